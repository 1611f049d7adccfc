package domain

// RowStatus は1行の処理結果のステータスです。
type RowStatus string

const (
	StatusSuccess RowStatus = "success"
	StatusFailed  RowStatus = "failed"
	StatusSkipped RowStatus = "skipped" // Content Title が空の行
)

// RowResult は PipelineReport の1エントリです。失敗時のみ ErrKind / Err が入ります。
type RowResult struct {
	RowIndex int
	Title    string
	Status   RowStatus
	ErrKind  ErrKind
	Err      error
}

// PipelineReport は1回の実行における行ごとの成否記録です。
// 行順（入力順）のまま追記され、入力行数と同じ数のエントリを必ず持ちます。
type PipelineReport struct {
	Results []RowResult
}

// Success は成功エントリを追記します。
func (r *PipelineReport) Success(row PoseRow) {
	r.Results = append(r.Results, RowResult{
		RowIndex: row.Index,
		Title:    row.ContentTitle,
		Status:   StatusSuccess,
	})
}

// Skip はスキップエントリを追記します。
func (r *PipelineReport) Skip(row PoseRow) {
	r.Results = append(r.Results, RowResult{
		RowIndex: row.Index,
		Title:    row.ContentTitle,
		Status:   StatusSkipped,
	})
}

// Fail は失敗エントリを追記します。種別が付与されていないエラーは fallback で分類します。
func (r *PipelineReport) Fail(row PoseRow, err error, fallback ErrKind) {
	r.Results = append(r.Results, RowResult{
		RowIndex: row.Index,
		Title:    row.ContentTitle,
		Status:   StatusFailed,
		ErrKind:  KindOf(err, fallback),
		Err:      err,
	})
}

// Failed は失敗エントリのみを行順で返します。
func (r *PipelineReport) Failed() []RowResult {
	var failed []RowResult
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// HasFailures は1件でも失敗があれば true を返します。プロセスの終了コード判定に使います。
func (r *PipelineReport) HasFailures() bool {
	return len(r.Failed()) > 0
}

// Counts は (成功, 失敗, スキップ) の件数を返します。
func (r *PipelineReport) Counts() (success, failed, skipped int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusSuccess:
			success++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return success, failed, skipped
}
