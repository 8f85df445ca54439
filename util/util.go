package util

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

func JSONToFile(j []byte, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if _, err := f.Write(j); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ToJSON marshals v as indented json and, if createFile is set, writes it to filename
func ToJSON(v interface{}, createFile bool, filename string) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error encoding json: %w", err)
	}
	if createFile {
		if err := JSONToFile(b, filename); err != nil {
			return "", fmt.Errorf("error writing %s: %w", filename, err)
		}
	}
	return string(b), nil
}

// SelectDirectory asks the user to pick one of the sub directories of root
func SelectDirectory(root string, message string) (string, error) {
	directories, err := GetCorpusDirectories(root)
	if err != nil {
		return "", err
	}
	if len(directories) == 0 {
		return "", fmt.Errorf("no directories found in %s", root)
	}

	options := []string{}
	for _, d := range directories {
		options = append(options, "○ "+d)
	}

	prompt := &survey.Select{
		Message: message,
		Options: options,
	}

	var selectedDirectory string
	if err := survey.AskOne(prompt, &selectedDirectory); err != nil {
		return "", err
	}

	return filepath.Join(root, FormatCliResponse(selectedDirectory)), nil
}

// Clean up the CLI response to remove the bullet point
func FormatCliResponse(response string) string {
	return strings.Replace(response, "○ ", "", -1)
}

// GetCorpusDirectories lists the sub directories of root, sorted by name
func GetCorpusDirectories(root string) ([]string, error) {
	files, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	directories := []string{}
	for _, f := range files {
		if f.IsDir() {
			if f.Name() == "src" || f.Name() == ".git" {
				continue
			}
			directories = append(directories, f.Name())
		}
	}
	sort.Strings(directories)

	return directories, nil
}

func CheckDirIsValid(dirName string) (bool, error) {
	info, err := os.Stat(dirName)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil // Directory does not exist
		}
		return false, err // Some other error occurred
	}
	return info.IsDir(), nil
}

func GetDirLength(dirName string) (int, error) {
	files, err := os.ReadDir(dirName)
	if err != nil {
		return 0, err
	}

	return len(files), nil
}

const (
	TerminalReset  = "\033[0m"
	TerminalRed    = "\033[31m"
	TerminalGreen  = "\033[32m"
	TerminalYellow = "\033[33m"
	TerminalBlue   = "\033[34m"
	TerminalPurple = "\033[35m"
	TerminalCyan   = "\033[36m"
	TerminalWhite  = "\033[37m"
)
