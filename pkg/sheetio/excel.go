package sheetio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/xuri/excelize/v2"

	"github.com/shouni/pose-image-kit/pkg/domain"
)

// ExcelWorkbookStore は XLSX ワークブックを対象とする RowSource / CellWriter 実装です。
// ローカルパスのほか、remoteio が対応する URI (gs:// や https://) からの読み取りに
// 対応します。書き込みはローカルパスの場合のみ可能です。
type ExcelWorkbookStore struct {
	path      string
	sheetName string
	reader    remoteio.InputReader
	file      *excelize.File
}

// NewExcelWorkbookStore はワークブックストアを初期化します。
// reader はリモート URI を開く場合のみ必須です。
func NewExcelWorkbookStore(path, sheetName string, reader remoteio.InputReader) (*ExcelWorkbookStore, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	if isRemotePath(path) && reader == nil {
		return nil, fmt.Errorf("リモートURI %q を開くには reader が必要です", path)
	}

	return &ExcelWorkbookStore{
		path:      path,
		sheetName: sheetName,
		reader:    reader,
	}, nil
}

func isRemotePath(path string) bool {
	return strings.Contains(path, "://")
}

// open はワークブックを遅延オープンします。以降の読み書きは同じハンドルを共有します。
func (s *ExcelWorkbookStore) open(ctx context.Context) (*excelize.File, error) {
	if s.file != nil {
		return s.file, nil
	}

	if isRemotePath(s.path) {
		rc, err := s.reader.Open(ctx, s.path)
		if err != nil {
			return nil, fmt.Errorf("リモートワークブックのオープンに失敗しました: %w", err)
		}
		defer rc.Close()

		f, err := excelize.OpenReader(rc)
		if err != nil {
			return nil, fmt.Errorf("ワークブックの解析に失敗しました: %w", err)
		}
		s.file = f
		return f, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("ワークブックのオープンに失敗しました: %w", err)
	}
	s.file = f
	return f, nil
}

// Close は開いているワークブックを閉じます。
func (s *ExcelWorkbookStore) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// ReadRows はワークシート全行を取得してポーズ行に変換します。
func (s *ExcelWorkbookStore) ReadRows(ctx context.Context) ([]domain.PoseRow, error) {
	f, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	records, err := f.GetRows(s.sheetName)
	if err != nil {
		return nil, fmt.Errorf("シート %q の読み取りに失敗しました: %w", s.sheetName, err)
	}

	rows, err := buildRows(records, func(imageCol, dataIdx int) string {
		cell, err := excelize.CoordinatesToCellName(imageCol+1, dataIdx+2)
		if err != nil {
			// 座標は常に正値なのでここには来ない
			return fmt.Sprintf("E%d", dataIdx+2)
		}
		return cell
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "ワークブックからポーズ行を取得しました", "path", s.path, "rows", len(rows))
	return rows, nil
}

// WriteImageFormula は行の出力セルへ IMAGE 数式を上書き保存し、都度ファイルへ反映します。
func (s *ExcelWorkbookStore) WriteImageFormula(ctx context.Context, row domain.PoseRow, publicURL string) error {
	if isRemotePath(s.path) {
		return domain.Kindf(domain.KindWrite, "リモートワークブック %q への書き込みは未対応です", s.path)
	}

	f, err := s.open(ctx)
	if err != nil {
		return domain.WrapKind(domain.KindWrite, err)
	}

	// excelize の数式は先頭の '=' を付けない形式
	formula := strings.TrimPrefix(ImageFormula(publicURL), "=")
	if err := f.SetCellFormula(s.sheetName, row.ImageCell, formula); err != nil {
		return domain.WrapKind(domain.KindWrite, fmt.Errorf("セル %s の更新に失敗しました: %w", row.ImageCell, err))
	}

	if err := f.Save(); err != nil {
		return domain.WrapKind(domain.KindWrite, fmt.Errorf("ワークブックの保存に失敗しました: %w", err))
	}

	slog.InfoContext(ctx, "画像数式を書き込みました", "cell", row.ImageCell)
	return nil
}
