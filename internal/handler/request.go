package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxRequestBodySize はリクエストボディの最大サイズ（1MB）。
const maxRequestBodySize = 1 << 20

// decodeJSONBody はリクエストボディをJSONとしてデコードする。
// 空ボディ、不正なJSON、サイズ超過はエラーを返す。
func decodeJSONBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("リクエストボディがありません")
	}

	body := http.MaxBytesReader(nil, r.Body, maxRequestBodySize)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("リクエストボディが空です")
		}
		return err
	}
	return nil
}
