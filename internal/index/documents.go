package index

import (
	"encoding/json"
	"fmt"
	"os"
)

// Document is one scraped documentation page, produced by the external
// scraper and serialized as a JSON array on disk. Immutable once indexed.
type Document struct {
	URL          string   `json:"url"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	CodeExamples []string `json:"code_examples"`
}

// CodeFile is one extracted source file from the cloned example projects,
// the optional secondary corpus.
type CodeFile struct {
	FilePath  string `json:"file_path"`
	Project   string `json:"project"`
	Extension string `json:"extension"`
	Content   string `json:"content"`
}

func LoadDocuments(path string) ([]Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from application config, not user input
	if err != nil {
		return nil, fmt.Errorf("read documents file: %w", err)
	}

	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse documents file %s: %w", path, err)
	}
	return docs, nil
}

func LoadCodeFiles(path string) ([]CodeFile, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from application config, not user input
	if err != nil {
		return nil, fmt.Errorf("read code files: %w", err)
	}

	var files []CodeFile
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, fmt.Errorf("parse code files %s: %w", path, err)
	}
	return files, nil
}

// AsDocuments converts extracted code files into indexable documents, one
// per file, so the code corpus rides the same indexing path as the docs.
func AsDocuments(files []CodeFile) []Document {
	docs := make([]Document, 0, len(files))
	for _, f := range files {
		docs = append(docs, Document{
			URL:     fmt.Sprintf("github://%s/%s", f.Project, f.FilePath),
			Title:   fmt.Sprintf("%s: %s", f.Project, f.FilePath),
			Content: f.Content,
		})
	}
	return docs
}
