// Package utility - Test chuyển đổi tham số phân trang từ query string.
package utility

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestP2Int64_ChuoiSoTuQueryParam(t *testing.T) {
	assert.Equal(t, int64(25), P2Int64("25"), "chuỗi số phải được parse thành int64")
	assert.Equal(t, int64(-3), P2Int64("-3"))
	assert.Equal(t, int64(0), P2Int64("abc"), "chuỗi không phải số phải trả về 0")
	assert.Equal(t, int64(0), P2Int64(""), "chuỗi rỗng phải trả về 0")
}

func TestP2Int64_JsonNumberVaSoNative(t *testing.T) {
	assert.Equal(t, int64(7), P2Int64(json.Number("7")))
	assert.Equal(t, int64(0), P2Int64(json.Number("1.5")), "json.Number thập phân không phải int64")
	assert.Equal(t, int64(42), P2Int64(int64(42)))
	assert.Equal(t, int64(42), P2Int64(42))
	assert.Equal(t, int64(0), P2Int64(nil))
}

func TestP2Float64_CacKieuDauVao(t *testing.T) {
	assert.Equal(t, 1.5, P2Float64("1.5"))
	assert.Equal(t, 2.25, P2Float64(json.Number("2.25")))
	assert.Equal(t, 3.0, P2Float64(3.0))
	assert.Equal(t, 0.0, P2Float64("x"), "chuỗi không phải số phải trả về 0")
	assert.Equal(t, 0.0, P2Float64(nil))
}
