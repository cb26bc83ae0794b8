// Package sigv4 computes AWS Signature Version 4 request headers.
package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/j-veylop/aws-costs-tui/internal/models"
)

const (
	// Algorithm is the signing algorithm identifier.
	Algorithm = "AWS4-HMAC-SHA256"

	// TimeFormat is the layout of the X-Amz-Date header.
	TimeFormat = "20060102T150405Z"

	dateFormat  = "20060102"
	scopeSuffix = "aws4_request"

	// Header names attached by Sign.
	HeaderAuthorization = "Authorization"
	HeaderDate          = "X-Amz-Date"
	HeaderSecurityToken = "X-Amz-Security-Token"
)

// ErrSigning is returned when a request cannot be signed.
var ErrSigning = errors.New("signing failed")

// Request is everything needed to sign one HTTP request.
type Request struct {
	Method      string
	Host        string
	Path        string
	Query       url.Values
	Headers     map[string]string
	Body        []byte
	Credentials models.Credentials
	Region      string
	Service     string
	Time        time.Time
}

// Sign returns the headers to attach to req: Authorization, X-Amz-Date and,
// for temporary credentials, X-Amz-Security-Token.
func Sign(req Request) (map[string]string, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	t := req.Time.UTC()
	amzDate := t.Format(TimeFormat)
	shortDate := t.Format(dateFormat)

	headers := canonicalHeaderMap(req, amzDate)
	signedHeaders := signedHeaderList(headers)
	canonical := CanonicalRequest(req.Method, req.Path, req.Query, headers, signedHeaders, req.Body)

	scope := strings.Join([]string{shortDate, req.Region, req.Service, scopeSuffix}, "/")
	toSign := StringToSign(amzDate, scope, canonical)
	key := SigningKey(req.Credentials.SecretAccessKey, shortDate, req.Region, req.Service)
	signature := hex.EncodeToString(hmacSHA256(key, []byte(toSign)))

	out := map[string]string{
		HeaderAuthorization: fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
			Algorithm, req.Credentials.AccessKeyID, scope, strings.Join(signedHeaders, ";"), signature),
		HeaderDate: amzDate,
	}
	if req.Credentials.HasSessionToken() {
		out[HeaderSecurityToken] = req.Credentials.SessionToken
	}
	return out, nil
}

func validate(req Request) error {
	switch {
	case req.Credentials.AccessKeyID == "":
		return fmt.Errorf("%w: access key id is empty", ErrSigning)
	case req.Credentials.SecretAccessKey == "":
		return fmt.Errorf("%w: secret access key is empty", ErrSigning)
	case req.Region == "":
		return fmt.Errorf("%w: region is empty", ErrSigning)
	case req.Service == "":
		return fmt.Errorf("%w: service is empty", ErrSigning)
	case req.Host == "":
		return fmt.Errorf("%w: host is empty", ErrSigning)
	case req.Time.IsZero():
		return fmt.Errorf("%w: timestamp is zero", ErrSigning)
	}
	if y := req.Time.UTC().Year(); y < 1 || y > 9999 {
		return fmt.Errorf("%w: timestamp year %d is not representable", ErrSigning, y)
	}
	return nil
}

// canonicalHeaderMap lower-cases and trims the headers to sign and adds the
// mandatory host, date and token headers.
func canonicalHeaderMap(req Request, amzDate string) map[string]string {
	headers := make(map[string]string, len(req.Headers)+3)
	for k, v := range req.Headers {
		headers[strings.ToLower(strings.TrimSpace(k))] = normalizeHeaderValue(v)
	}
	headers["host"] = req.Host
	headers["x-amz-date"] = amzDate
	if req.Credentials.HasSessionToken() {
		headers["x-amz-security-token"] = req.Credentials.SessionToken
	}
	return headers
}

func normalizeHeaderValue(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

func signedHeaderList(headers map[string]string) []string {
	names := make([]string, 0, len(headers))
	for k := range headers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// CanonicalRequest builds the canonical request string.
func CanonicalRequest(method, path string, query url.Values, headers map[string]string, signed []string, body []byte) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte('\n')
	b.WriteString(CanonicalURI(path))
	b.WriteByte('\n')
	b.WriteString(CanonicalQuery(query))
	b.WriteByte('\n')
	for _, name := range signed {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(headers[name])
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(strings.Join(signed, ";"))
	b.WriteByte('\n')
	b.WriteString(HashHex(body))
	return b.String()
}

// CanonicalURI percent-encodes each path segment, keeping the separators.
func CanonicalURI(path string) string {
	if path == "" {
		return "/"
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = uriEncode(s)
	}
	out := strings.Join(segments, "/")
	if !strings.HasPrefix(out, "/") {
		out = "/" + out
	}
	return out
}

// CanonicalQuery sorts parameters by key, then value, and encodes both.
func CanonicalQuery(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []string
	for _, k := range keys {
		values := append([]string(nil), query[k]...)
		sort.Strings(values)
		for _, v := range values {
			pairs = append(pairs, uriEncode(k)+"="+uriEncode(v))
		}
	}
	return strings.Join(pairs, "&")
}

// uriEncode applies RFC 3986 encoding: only unreserved characters pass through.
func uriEncode(s string) string {
	const hexDigits = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.' || c == '~'
}

// StringToSign builds the string signed with the derived key.
func StringToSign(amzDate, scope, canonicalRequest string) string {
	return strings.Join([]string{
		Algorithm,
		amzDate,
		scope,
		HashHex([]byte(canonicalRequest)),
	}, "\n")
}

// SigningKey derives the per-day, per-region, per-service signing key.
func SigningKey(secret, shortDate, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), []byte(shortDate))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	return hmacSHA256(kService, []byte(scopeSuffix))
}

// HashHex returns the lowercase hex SHA-256 of data.
func HashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
