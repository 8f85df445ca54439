package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/deanrtaylor1/goclassify/classifier"
	"github.com/deanrtaylor1/goclassify/corpus"
	"github.com/deanrtaylor1/goclassify/util"
	webcrawler "github.com/deanrtaylor1/goclassify/web-crawler"
)

// largest request body accepted for classification
const maxBodySize = 1 << 20

var ErrModelNotReady = errors.New("model is still training")

// Model wraps a classifier so that it can be trained in the background while serving requests
type Model struct {
	Classifier classifier.Classifier
	Name       string
	DocCount   int
	IsComplete bool
	ModelLock  *sync.Mutex
	Client     *http.Client
}

type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ModelResponse struct {
	Message    string   `json:"message"`
	Name       string   `json:"name"`
	Classifier string   `json:"classifier"`
	Categories []string `json:"categories"`
	DocCount   int      `json:"doc_count"`
	IsComplete bool     `json:"is_complete"`
}

type Classification struct {
	Category string `json:"category"`
	Index    int    `json:"index"`
	Terms    int    `json:"terms"`
}

// NewModel returns an untrained model
func NewModel(c classifier.Classifier, name string) *Model {
	return &Model{
		Classifier: c,
		Name:       name,
		ModelLock:  &sync.Mutex{},
		Client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Train trains the classifier and marks the model complete
func (m *Model) Train(examples []*classifier.Example) error {
	m.ModelLock.Lock()
	defer m.ModelLock.Unlock()
	if err := m.Classifier.Train(examples); err != nil {
		return err
	}
	m.DocCount = len(examples)
	m.IsComplete = true
	return nil
}

// Classify predicts the category of a text document
func (m *Model) Classify(text string) (Classification, error) {
	example := &classifier.Example{Name: "request", Vector: corpus.DocumentVector(text, "")}

	m.ModelLock.Lock()
	defer m.ModelLock.Unlock()
	if !m.IsComplete {
		return Classification{}, ErrModelNotReady
	}
	index, err := m.Classifier.Predict(example)
	if err != nil {
		return Classification{}, err
	}
	return Classification{
		Category: m.Classifier.Categories()[index],
		Index:    index,
		Terms:    len(example.Vector),
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		log.Println(util.TerminalRed+"Unable to marshal json: ", err, util.TerminalReset)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(jsonBytes); err != nil {
		log.Println(err)
	}
}

func readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	requestBodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		log.Println(err)
		writeJSON(w, http.StatusBadRequest, &Response{Message: "Unable to read request body"})
		return "", false
	}
	body := strings.TrimSpace(string(requestBodyBytes))
	if body == "" {
		writeJSON(w, http.StatusBadRequest, &Response{Message: "Empty request body"})
		return "", false
	}
	return body, true
}

func writeClassification(w http.ResponseWriter, model *Model, text string, start time.Time) {
	result, err := model.Classify(text)
	if errors.Is(err, ErrModelNotReady) {
		writeJSON(w, http.StatusServiceUnavailable, &Response{Message: err.Error()})
		return
	}
	if err != nil {
		log.Println(err)
		writeJSON(w, http.StatusInternalServerError, &Response{Message: err.Error()})
		return
	}

	elapsed := time.Since(start)
	writeJSON(w, http.StatusOK, &Response{
		Message: fmt.Sprintf("Classified document of %d terms in %d Ms", result.Terms, elapsed.Milliseconds()),
		Data:    result,
	})
	log.Println(util.TerminalCyan+"Classified as", result.Category, "in", elapsed.Milliseconds(), "ms"+util.TerminalReset)
}

// Server route to classify the raw text in the request body
func handleApiClassify(w http.ResponseWriter, r *http.Request, model *Model) {
	start := time.Now()
	text, ok := readBody(w, r)
	if !ok {
		return
	}
	writeClassification(w, model, text, start)
}

// Server route to fetch the page at the url in the request body and classify it
func handleApiClassifyUrl(w http.ResponseWriter, r *http.Request, model *Model) {
	start := time.Now()
	pageURL, ok := readBody(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	text, err := webcrawler.FetchText(ctx, model.Client, pageURL)
	if err != nil {
		log.Println(err)
		writeJSON(w, http.StatusBadGateway, &Response{Message: "Unable to fetch url"})
		return
	}
	writeClassification(w, model, text, start)
}

// Server route to get the configured categories
func handleApiCategories(w http.ResponseWriter, r *http.Request, model *Model) {
	writeJSON(w, http.StatusOK, &Response{
		Message: "Available categories",
		Data:    model.Classifier.Categories(),
	})
}

// Server route to get the state of the model
func handleApiModel(w http.ResponseWriter, r *http.Request, model *Model) {
	model.ModelLock.Lock()
	response := ModelResponse{
		Name:       model.Name,
		Classifier: model.Classifier.Name(),
		Categories: model.Classifier.Categories(),
		DocCount:   model.DocCount,
		IsComplete: model.IsComplete,
	}
	model.ModelLock.Unlock()

	if response.IsComplete {
		response.Message = "Complete"
	} else {
		response.Message = "In Progress"
	}
	writeJSON(w, http.StatusOK, response)
}

// Route handler
func handleRequests(model *Model) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Println(r.Method, r.URL.Path)
		switch {
		case r.Method == "GET" && r.URL.Path == "/api/categories":
			handleApiCategories(w, r, model)
		case r.Method == "GET" && r.URL.Path == "/api/model":
			handleApiModel(w, r, model)
		case r.Method == "POST" && r.URL.Path == "/api/classify":
			handleApiClassify(w, r, model)
		case r.Method == "POST" && r.URL.Path == "/api/classify-url":
			handleApiClassifyUrl(w, r, model)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "404 Not Found")

		}
	}
}

// Handler returns the http handler serving model
func Handler(model *Model) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", handleRequests(model))
	return mux
}

// Serve listens on addr until ctx is cancelled
func Serve(ctx context.Context, addr string, model *Model) error {
	srv := &http.Server{Addr: addr, Handler: Handler(model)}

	errChan := make(chan error, 1)
	go func() {
		log.Println("Listening on", addr, "...")
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
