package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// RandomDigits 生成指定长度的安全随机数字串
func RandomDigits(length int) string {
	var sb strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			panic("generate random digit failed")
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String()
}
