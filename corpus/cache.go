package corpus

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path"
)

type FileOps interface {
	MkdirAll(dirName string, perm os.FileMode) error
	CompressAndWriteGzipFile(filename string, data interface{}, dirName string) error
}

type FileOpsImpl struct{}

func (f FileOpsImpl) MkdirAll(dirName string, perm os.FileMode) error {
	return os.MkdirAll(dirName, perm)
}

func (f FileOpsImpl) CompressAndWriteGzipFile(filename string, data interface{}, dirName string) error {
	return CompressAndWriteGzipFile(filename, data, dirName)
}

type FileOpsNoOp struct{}

func (f FileOpsNoOp) MkdirAll(dirName string, perm os.FileMode) error {
	return nil
}

func (f FileOpsNoOp) CompressAndWriteGzipFile(filename string, data interface{}, dirName string) error {
	return nil
}

// This function is used to write and compress a datastructure to disk
func CompressAndWriteGzipFile(fileName string, data interface{}, dirName string) error {
	var compressedData bytes.Buffer
	gzipWriter := gzip.NewWriter(&compressedData)

	encoder := gob.NewEncoder(gzipWriter)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("error encoding corpus data: %v", err)
	}

	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("error closing gzip writer: %v", err)
	}

	if err := os.WriteFile(path.Join(dirName, fileName), compressedData.Bytes(), 0644); err != nil {
		return fmt.Errorf("error writing compressed data to disk: %v", err)
	}

	return nil
}

// This function is used to read and decompress a datastructure written by CompressAndWriteGzipFile
func ReadGzipFile(filePath string, data interface{}) error {
	compressedData, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	gzipReader, err := gzip.NewReader(bytes.NewReader(compressedData))
	if err != nil {
		return fmt.Errorf("error opening gzip reader: %w", err)
	}
	defer gzipReader.Close()

	if err := gob.NewDecoder(gzipReader).Decode(data); err != nil {
		return fmt.Errorf("error decoding corpus data: %w", err)
	}
	return nil
}

// ReadCache reads the documents of a cached corpus
func ReadCache(filePath string) ([]Document, error) {
	var docs []Document
	if err := ReadGzipFile(filePath, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
