package handler

import (
	"context"
	"io"
)

type recordingStorage struct {
	contentTypes []string
}

func (s *recordingStorage) Save(_ context.Context, _, contentType string, file io.Reader) error {
	_, err := io.Copy(io.Discard, file)
	s.contentTypes = append(s.contentTypes, contentType)
	return err
}

func (s *recordingStorage) Delete(context.Context, string) error { return nil }

func (s *recordingStorage) URL(path string) string {
	return "https://covers.example.com/" + path
}
