package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindError(t *testing.T) {
	t.Run("WrapKind: errors.As で種別を取り出せるのだ", func(t *testing.T) {
		cause := errors.New("401 Unauthorized")
		err := WrapKind(KindAuthentication, cause)

		var ke *KindError
		if !errors.As(err, &ke) {
			t.Fatal("expected KindError in chain")
		}
		if ke.Kind != KindAuthentication {
			t.Errorf("got kind %q, want %q", ke.Kind, KindAuthentication)
		}
		if !errors.Is(err, cause) {
			t.Error("wrapped cause should survive errors.Is")
		}
	})

	t.Run("WrapKind: nil はそのまま nil を返すのだ", func(t *testing.T) {
		if WrapKind(KindUpload, nil) != nil {
			t.Error("expected nil for nil error")
		}
	})

	t.Run("多段ラップでも KindOf が効くのだ", func(t *testing.T) {
		inner := Kindf(KindRateLimit, "429 Too Many Requests")
		outer := fmt.Errorf("プロバイダ呼び出し失敗: %w", inner)

		if got := KindOf(outer, KindGeneration); got != KindRateLimit {
			t.Errorf("got %q, want %q", got, KindRateLimit)
		}
	})

	t.Run("種別なしは fallback を返すのだ", func(t *testing.T) {
		if got := KindOf(errors.New("plain"), KindWrite); got != KindWrite {
			t.Errorf("got %q, want %q", got, KindWrite)
		}
	})
}
