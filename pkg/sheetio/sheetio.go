// Package sheetio はスプレッドシート（Google Sheets / XLSX ワークブック）との
// 読み書きを抽象化します。読み取りはポーズ行、書き込みは画像数式セルのみです。
package sheetio

import (
	"context"
	"fmt"
	"strings"

	"github.com/shouni/pose-image-kit/pkg/domain"
)

// 読み取り対象のヘッダー名。1行目に存在することを前提とします。
const (
	colStyle      = "Image Style"
	colBackground = "Background Color"
	colTheme      = "Theme Description"
	colTitle      = "Content Title"
	colImage      = "Image Generation" // 書き込み専用の出力列
)

// RowSource はポーズ行の読み取り窓口です。1回の実行で一度だけ読み取ります。
type RowSource interface {
	ReadRows(ctx context.Context) ([]domain.PoseRow, error)
}

// CellWriter は生成結果セルへの書き込み窓口です。
// 再実行時は同じセルを上書きし、追記はしません。
type CellWriter interface {
	WriteImageFormula(ctx context.Context, row domain.PoseRow, publicURL string) error
}

// ImageFormula は表示レイヤーで画像をインライン描画する数式を返します。
// モード 3 は元サイズでの埋め込みです。
func ImageFormula(publicURL string) string {
	return fmt.Sprintf(`=IMAGE("%s", 3)`, publicURL)
}

// headerIndex はヘッダー行から列名 -> 列番号(0始まり) の対応を作ります。
func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

// buildRows はヘッダー付きレコード群を PoseRow の列に変換します。
// cellRef は (画像列の0始まり列番号, 0始まりデータ行番号) から出力セル参照を作ります。
// 短い行は空文字で埋め、必須ヘッダーの欠落はエラーにします。
func buildRows(records [][]string, cellRef func(imageCol, dataIdx int) string) ([]domain.PoseRow, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("シートにデータがありません")
	}

	idx := headerIndex(records[0])
	for _, required := range []string{colStyle, colBackground, colTheme, colTitle} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("必須ヘッダー %q が見つかりません", required)
		}
	}

	// 出力列が無いシートでは E 列相当（5列目）に書く
	imageCol, ok := idx[colImage]
	if !ok {
		imageCol = 4
	}

	cell := func(record []string, col int) string {
		if col < len(record) {
			return strings.TrimSpace(record[col])
		}
		return ""
	}

	rows := make([]domain.PoseRow, 0, len(records)-1)
	for i, record := range records[1:] {
		rows = append(rows, domain.PoseRow{
			Index:            i,
			Style:            cell(record, idx[colStyle]),
			BackgroundColor:  cell(record, idx[colBackground]),
			ThemeDescription: cell(record, idx[colTheme]),
			ContentTitle:     cell(record, idx[colTitle]),
			ImageCell:        cellRef(imageCol, i),
		})
	}
	return rows, nil
}

// stringRecords は Sheets API の values ([][]interface{}) を文字列レコードに変換します。
func stringRecords(values [][]interface{}) [][]string {
	records := make([][]string, len(values))
	for i, row := range values {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = fmt.Sprint(v)
		}
		records[i] = record
	}
	return records
}
