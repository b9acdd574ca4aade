//go:build !ocr

package ocr

import (
	"context"
	"errors"
	"testing"
)

func TestStub(t *testing.T) {
	client, err := New(Config{})
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("New() error = %v, want ErrOCRNotEnabled", err)
	}
	if client != nil {
		t.Error("Expected nil client")
	}

	if _, err := client.Recognize(context.Background(), []byte{1}); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("Recognize() error = %v, want ErrOCRNotEnabled", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on nil client = %v", err)
	}
}

func TestConfigLanguages(t *testing.T) {
	if got := (Config{}).languages(); len(got) != 1 || got[0] != "eng" {
		t.Errorf("languages() = %v, want [eng]", got)
	}
	if got := (Config{Languages: []string{"deu", "fra"}}).languages(); len(got) != 2 {
		t.Errorf("languages() = %v", got)
	}
}
