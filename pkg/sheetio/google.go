package sheetio

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/shouni/pose-image-kit/pkg/domain"
)

// DefaultSheetName は読み書き対象の既定ワークシート名です。
const DefaultSheetName = "Sheet1"

// GoogleSheetStore は Google Sheets API v4 経由の RowSource / CellWriter 実装です。
// サービスアカウントの鍵ファイルで認証します。
type GoogleSheetStore struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewGoogleSheetStore はサービスアカウント認証でストアを初期化します。
func NewGoogleSheetStore(ctx context.Context, spreadsheetID, sheetName, credentialsFile string) (*GoogleSheetStore, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("Sheetsサービスの初期化に失敗しました: %w", err)
	}

	return &GoogleSheetStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// ReadRows は A1:E 範囲を一括取得してポーズ行に変換します。
func (s *GoogleSheetStore) ReadRows(ctx context.Context) ([]domain.PoseRow, error) {
	readRange := fmt.Sprintf("%s!A1:E", s.sheetName)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("シートの読み取りに失敗しました: %w", err)
	}

	rows, err := buildRows(stringRecords(resp.Values), func(imageCol, dataIdx int) string {
		// ヘッダー行の次からがデータなので、シート上の行番号は dataIdx + 2
		return fmt.Sprintf("%s!%s%d", s.sheetName, columnLetter(imageCol), dataIdx+2)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "シートからポーズ行を取得しました",
		"spreadsheet_id", s.spreadsheetID, "rows", len(rows))
	return rows, nil
}

// WriteImageFormula は行の出力セルへ IMAGE 数式を上書き保存します。
func (s *GoogleSheetStore) WriteImageFormula(ctx context.Context, row domain.PoseRow, publicURL string) error {
	body := &sheets.ValueRange{
		Values: [][]interface{}{{ImageFormula(publicURL)}},
	}

	_, err := s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, row.ImageCell, body).
		ValueInputOption("USER_ENTERED"). // 数式として解釈させる
		Context(ctx).
		Do()
	if err != nil {
		return domain.WrapKind(domain.KindWrite, fmt.Errorf("セル %s の更新に失敗しました: %w", row.ImageCell, err))
	}

	slog.InfoContext(ctx, "画像数式を書き込みました", "cell", row.ImageCell)
	return nil
}

// columnLetter は 0 始まりの列番号を A1 形式の列名に変換します。
func columnLetter(col int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return name
}
