package imgutil

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
)

// CompressToJPEG は画像データ（PNG, GIF, JPEG等）をJPEG形式に圧縮します。
// image.Decodeがサポートするフォーマットに対応しています。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ShrinkOver は data が limit バイトを超える場合のみ JPEG に圧縮して返します。
// 戻り値は (データ, MIMEタイプ, error)。limit 以下、または limit が 0 以下の場合は
// 元データと元の mimeType をそのまま返します。
// アップロード先（Drive / GCS）の転送量を抑えるための前処理です。
func ShrinkOver(data []byte, mimeType string, limit, quality int) ([]byte, string, error) {
	if limit <= 0 || len(data) <= limit {
		return data, mimeType, nil
	}

	compressed, err := CompressToJPEG(data, quality)
	if err != nil {
		return nil, "", err
	}

	// 圧縮の結果むしろ大きくなった場合は元データを優先する
	if len(compressed) >= len(data) {
		return data, mimeType, nil
	}
	return compressed, "image/jpeg", nil
}
