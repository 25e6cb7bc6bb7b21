package models

import "os"

// Source is one input document. When Open is set, it is called once by
// the worker that analyzes the document; otherwise Content is used as is.
type Source struct {
	Path    string
	Content []byte
	Open    func() ([]byte, error)
}

// TextSource wraps content that has already been read.
func TextSource(path string, content []byte) Source {
	return Source{Path: path, Content: content}
}

// FileSource defers reading path until a worker picks it up.
func FileSource(path string) Source {
	return Source{
		Path: path,
		Open: func() ([]byte, error) {
			return os.ReadFile(path)
		},
	}
}

// Read returns the source content, performing the read if needed.
func (s Source) Read() ([]byte, error) {
	if s.Open != nil {
		return s.Open()
	}
	return s.Content, nil
}
