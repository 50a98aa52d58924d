package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// secretKey 是服务器在启动时生成的32字节HMAC密钥。
// 每次重启都会更换，旧的抽奖凭证随之全部失效。
var secretKey []byte

// SpinTicket 定义了需要被签名的抽奖凭证。
// claim成功后随响应下发，/spin 请求时原样带回并校验。
type SpinTicket struct {
	ClaimID string `json:"c"` // 本次claim的唯一ID
	Email   string `json:"e"` // 归一化后的邮箱
	Day     string `json:"d"` // claim当天的日期键 (YYYY-MM-DD)
}

// GenerateSecretKey 生成一个密码学安全的32字节随机密钥。
func GenerateSecretKey() {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	if err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	secretKey = key
	fmt.Println("HMAC密钥已成功生成。")
}

// GenerateTicketSignature 为一个给定的SpinTicket生成HMAC签名。
// 返回签名的Base64编码字符串。
func GenerateTicketSignature(ticket SpinTicket) (string, error) {
	payloadBytes, err := json.Marshal(ticket)
	if err != nil {
		return "", errors.New("无法序列化抽奖凭证")
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	signature := mac.Sum(nil)

	return base64.RawURLEncoding.EncodeToString(signature), nil
}

// ValidateTicketSignature 验证一个给定的凭证和签名是否匹配。
func ValidateTicketSignature(ticket SpinTicket, signatureB64 string) bool {
	// 重新序列化，确保与签名时的数据格式完全一致
	payloadBytes, err := json.Marshal(ticket)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	expectedSignature := mac.Sum(nil)

	actualSignature, err := base64.RawURLEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}

	// hmac.Equal是时间恒定的比较，防止时序攻击
	return hmac.Equal(expectedSignature, actualSignature)
}
