package bluelm

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Gateway authentication headers.
const (
	HeaderAppID         = "X-AI-GATEWAY-APP-ID"
	HeaderTimestamp     = "X-AI-GATEWAY-TIMESTAMP"
	HeaderNonce         = "X-AI-GATEWAY-NONCE"
	HeaderSignedHeaders = "X-AI-GATEWAY-SIGNED-HEADERS"
	HeaderSignature     = "X-AI-GATEWAY-SIGNATURE"
)

const signedHeaderNames = "x-ai-gateway-app-id;x-ai-gateway-timestamp;x-ai-gateway-nonce"

const nonceAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Signer produces gateway authentication headers.
type Signer struct {
	AppID  string
	AppKey string
	// Now and Nonce are replaceable for deterministic tests.
	Now   func() time.Time
	Nonce func() string
}

// NewSigner creates a Signer using the wall clock and crypto/rand nonces.
func NewSigner(appID, appKey string) *Signer {
	return &Signer{
		AppID:  appID,
		AppKey: appKey,
		Now:    time.Now,
		Nonce:  randomNonce,
	}
}

// Headers returns the authentication headers for a request with the given
// method, path and query parameters.
func (s *Signer) Headers(method, path string, query url.Values) http.Header {
	timestamp := strconv.FormatInt(s.Now().Unix(), 10)
	nonce := s.Nonce()

	signature := Signature(s.AppKey, signingString(method, path, canonicalQuery(query), s.AppID, timestamp, nonce))

	h := make(http.Header)
	h.Set(HeaderAppID, s.AppID)
	h.Set(HeaderTimestamp, timestamp)
	h.Set(HeaderNonce, nonce)
	h.Set(HeaderSignedHeaders, signedHeaderNames)
	h.Set(HeaderSignature, signature)
	return h
}

// Signature is base64(HMAC-SHA256(key, message)).
func Signature(key, message string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func signingString(method, path, query, appID, timestamp, nonce string) string {
	signedHeaders := "x-ai-gateway-app-id:" + appID + "\n" +
		"x-ai-gateway-timestamp:" + timestamp + "\n" +
		"x-ai-gateway-nonce:" + nonce

	return strings.Join([]string{
		strings.ToUpper(method),
		path,
		query,
		appID,
		timestamp,
		signedHeaders,
	}, "\n")
}

// canonicalQuery sorts parameters by key and joins them as k=v pairs.
func canonicalQuery(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		for _, v := range query[k] {
			parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
		}
	}
	return strings.Join(parts, "&")
}

func randomNonce() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano()%100000000, 36)
	}
	for i := range b {
		b[i] = nonceAlphabet[int(b[i])%len(nonceAlphabet)]
	}
	return string(b)
}
