package sheetio

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCellRef(imageCol, dataIdx int) string {
	return fmt.Sprintf("col%d-row%d", imageCol, dataIdx)
}

func TestBuildRows(t *testing.T) {
	headers := []string{"Image Style", "Background Color", "Theme Description", "Content Title", "Image Generation"}

	t.Run("ヘッダーの次の行からデータ行になるのだ", func(t *testing.T) {
		records := [][]string{
			headers,
			{"vivid illustration", "white", "calm morning flow", "Warrior II", ""},
			{"ink wash", "beige", "sunset stretch", "Tree Pose", ""},
		}

		rows, err := buildRows(records, testCellRef)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, 0, rows[0].Index)
		assert.Equal(t, "vivid illustration", rows[0].Style)
		assert.Equal(t, "white", rows[0].BackgroundColor)
		assert.Equal(t, "calm morning flow", rows[0].ThemeDescription)
		assert.Equal(t, "Warrior II", rows[0].ContentTitle)
		assert.Equal(t, "col4-row0", rows[0].ImageCell)

		assert.Equal(t, 1, rows[1].Index)
		assert.Equal(t, "Tree Pose", rows[1].ContentTitle)
	})

	t.Run("短い行は空文字で埋められるのだ", func(t *testing.T) {
		records := [][]string{
			headers,
			{"sketch", "gray"}, // Theme 以降が欠けている
		}

		rows, err := buildRows(records, testCellRef)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		assert.Equal(t, "sketch", rows[0].Style)
		assert.Empty(t, rows[0].ThemeDescription)
		assert.Empty(t, rows[0].ContentTitle)
		assert.False(t, rows[0].HasTitle())
	})

	t.Run("列順が入れ替わっていてもヘッダー名で解決するのだ", func(t *testing.T) {
		records := [][]string{
			{"Content Title", "Image Style", "Image Generation", "Background Color", "Theme Description"},
			{"Cobra Pose", "flat design", "", "mint", "spring renewal"},
		}

		rows, err := buildRows(records, testCellRef)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		assert.Equal(t, "Cobra Pose", rows[0].ContentTitle)
		assert.Equal(t, "flat design", rows[0].Style)
		assert.Equal(t, "mint", rows[0].BackgroundColor)
		assert.Equal(t, "col2-row0", rows[0].ImageCell, "画像列の位置もヘッダーから解決される")
	})

	t.Run("必須ヘッダーの欠落はエラーなのだ", func(t *testing.T) {
		records := [][]string{
			{"Image Style", "Background Color", "Content Title"},
			{"a", "b", "c"},
		}

		_, err := buildRows(records, testCellRef)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Theme Description")
	})

	t.Run("空シートはエラーなのだ", func(t *testing.T) {
		_, err := buildRows(nil, testCellRef)
		assert.Error(t, err)
	})
}

func TestImageFormula(t *testing.T) {
	got := ImageFormula("https://example.test/img1.png")
	assert.Equal(t, `=IMAGE("https://example.test/img1.png", 3)`, got)
}

func TestStringRecords(t *testing.T) {
	values := [][]interface{}{
		{"Image Style", "Background Color"},
		{"vivid", 42},
	}

	records := stringRecords(values)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"vivid", "42"}, records[1])
}

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{0, "A"}, {4, "E"}, {25, "Z"}, {26, "AA"}, {27, "AB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, columnLetter(tt.col), "col %d", tt.col)
	}
}
