package adapters

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/pose-image-kit/pkg/domain"
)

// DNS解決を避けるため、テストの画像URLはパブリックIP直書きにする
const testImageURL = "https://93.184.216.34/generated/img1.png"

func newTestIdeogramAdapter(t *testing.T, httpClient *mockHTTPClient) *IdeogramAdapter {
	t.Helper()
	adapter, err := NewIdeogramAdapter(httpClient, "id-key", 0)
	require.NoError(t, err)
	// テストを高速化する
	adapter.pollInterval = time.Millisecond
	adapter.maxPolls = 5
	return adapter
}

func TestIdeogramAdapter_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("成功: 投入→ポーリング→ダウンロードの一連が通るのだ", func(t *testing.T) {
		polls := 0
		httpClient := &mockHTTPClient{
			doFunc: func(req *http.Request) ([]byte, error) {
				switch req.Method {
				case http.MethodPost:
					return []byte(`{"generation_id": "gen-123"}`), nil
				case http.MethodGet:
					polls++
					if polls < 3 {
						return []byte(`{"state": "pending"}`), nil
					}
					return []byte(`{"state": "completed", "image_url": "` + testImageURL + `"}`), nil
				}
				t.Fatalf("unexpected method: %s", req.Method)
				return nil, nil
			},
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				assert.Equal(t, testImageURL, url)
				return validPNG, nil
			},
		}

		adapter := newTestIdeogramAdapter(t, httpClient)
		img, err := adapter.Generate(ctx, "warrior pose illustration")

		require.NoError(t, err)
		assert.Equal(t, 3, polls)
		assert.Equal(t, validPNG, img.Data)
		assert.Equal(t, "image/png", img.MimeType)
	})

	t.Run("generation_id が無い応答はエラーなのだ", func(t *testing.T) {
		httpClient := &mockHTTPClient{
			doFunc: func(req *http.Request) ([]byte, error) {
				return []byte(`{}`), nil
			},
		}

		adapter := newTestIdeogramAdapter(t, httpClient)
		_, err := adapter.Generate(ctx, "prompt")

		require.Error(t, err)
		assert.Equal(t, domain.KindGeneration, domain.KindOf(err, ""))
	})

	t.Run("ポーリング上限到達でタイムアウト扱いになるのだ", func(t *testing.T) {
		httpClient := &mockHTTPClient{
			doFunc: func(req *http.Request) ([]byte, error) {
				if req.Method == http.MethodPost {
					return []byte(`{"generation_id": "gen-slow"}`), nil
				}
				return []byte(`{"state": "pending"}`), nil
			},
		}

		adapter := newTestIdeogramAdapter(t, httpClient)
		_, err := adapter.Generate(ctx, "prompt")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ポーリングがタイムアウト")
	})

	t.Run("プロバイダ側の失敗状態は Generation エラーなのだ", func(t *testing.T) {
		httpClient := &mockHTTPClient{
			doFunc: func(req *http.Request) ([]byte, error) {
				if req.Method == http.MethodPost {
					return []byte(`{"generation_id": "gen-fail"}`), nil
				}
				return []byte(`{"state": "failed"}`), nil
			},
		}

		adapter := newTestIdeogramAdapter(t, httpClient)
		_, err := adapter.Generate(ctx, "prompt")

		require.Error(t, err)
		assert.Equal(t, domain.KindGeneration, domain.KindOf(err, ""))
	})

	t.Run("プライベートIPの画像URLはダウンロードを拒否するのだ", func(t *testing.T) {
		httpClient := &mockHTTPClient{
			doFunc: func(req *http.Request) ([]byte, error) {
				if req.Method == http.MethodPost {
					return []byte(`{"generation_id": "gen-evil"}`), nil
				}
				return []byte(`{"state": "completed", "image_url": "http://10.0.0.1/evil.png"}`), nil
			},
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				t.Fatal("FetchBytes should not be called for unsafe URL")
				return nil, nil
			},
		}

		adapter := newTestIdeogramAdapter(t, httpClient)
		_, err := adapter.Generate(ctx, "prompt")
		assert.Error(t, err)
	})

	t.Run("投入時の認証エラーは Authentication に分類されるのだ", func(t *testing.T) {
		httpClient := &mockHTTPClient{
			doFunc: func(req *http.Request) ([]byte, error) {
				return nil, errors.New("unexpected status: 401 Unauthorized")
			},
		}

		adapter := newTestIdeogramAdapter(t, httpClient)
		_, err := adapter.Generate(ctx, "prompt")

		require.Error(t, err)
		assert.Equal(t, domain.KindAuthentication, domain.KindOf(err, ""))
	})
}
