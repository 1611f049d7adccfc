package pipeline

import (
	"context"

	"github.com/shouni/pose-image-kit/pkg/domain"
)

// --- Mocks ---

type mockBuilder struct {
	buildFunc func(row domain.PoseRow) (string, error)
}

func (m *mockBuilder) Build(row domain.PoseRow) (string, error) {
	if m.buildFunc != nil {
		return m.buildFunc(row)
	}
	return "mock prompt for " + row.ContentTitle, nil
}

type mockGenerator struct {
	calls        int
	generateFunc func(ctx context.Context, prompt string) (*domain.GeneratedImage, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (*domain.GeneratedImage, error) {
	m.calls++
	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt)
	}
	return &domain.GeneratedImage{Data: []byte("fake-image"), MimeType: "image/png"}, nil
}

type mockUploader struct {
	calls     int
	filenames []string
	storeFunc func(ctx context.Context, filename string, img *domain.GeneratedImage) (*domain.StoredImageRef, error)
}

func (m *mockUploader) Store(ctx context.Context, filename string, img *domain.GeneratedImage) (*domain.StoredImageRef, error) {
	m.calls++
	m.filenames = append(m.filenames, filename)
	if m.storeFunc != nil {
		return m.storeFunc(ctx, filename, img)
	}
	return &domain.StoredImageRef{PublicURL: "https://example.test/img1.png"}, nil
}

type mockWriter struct {
	calls     int
	written   map[string]string // ImageCell -> publicURL（上書き確認用）
	writeFunc func(ctx context.Context, row domain.PoseRow, publicURL string) error
}

func (m *mockWriter) WriteImageFormula(ctx context.Context, row domain.PoseRow, publicURL string) error {
	m.calls++
	if m.written == nil {
		m.written = make(map[string]string)
	}
	m.written[row.ImageCell] = publicURL
	if m.writeFunc != nil {
		return m.writeFunc(ctx, row, publicURL)
	}
	return nil
}
