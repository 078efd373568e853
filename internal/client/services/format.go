package services

import (
	"math"
	"strconv"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatFileSize renders n in binary units with at most two decimals,
// e.g. 2048000 -> "1.95 MB".
func FormatFileSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	v := math.Round(float64(n)/math.Pow(1024, float64(i))*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}
