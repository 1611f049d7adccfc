package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFlags(t *testing.T) {
	// フラグはパッケージ変数なのでケースごとに設定し直すのだ
	reset := func() {
		flagSheetID = ""
		flagFile = ""
		flagBackend = "sheets"
		flagStore = "drive"
		flagBucket = ""
	}

	t.Run("sheets は sheet-id が必須なのだ", func(t *testing.T) {
		reset()
		assert.Error(t, validateFlags())

		flagSheetID = "abc123"
		assert.NoError(t, validateFlags())
	})

	t.Run("xlsx は file が必須なのだ", func(t *testing.T) {
		reset()
		flagBackend = "xlsx"
		assert.Error(t, validateFlags())

		flagFile = "poses.xlsx"
		assert.NoError(t, validateFlags())
	})

	t.Run("gcs は bucket が必須なのだ", func(t *testing.T) {
		reset()
		flagSheetID = "abc123"
		flagStore = "gcs"
		assert.Error(t, validateFlags())

		flagBucket = "pose-images"
		assert.NoError(t, validateFlags())
	})

	t.Run("未知の backend と store は拒否されるのだ", func(t *testing.T) {
		reset()
		flagSheetID = "abc123"
		flagBackend = "csv"
		assert.Error(t, validateFlags())

		flagBackend = "sheets"
		flagStore = "s3"
		assert.Error(t, validateFlags())
	})
}
