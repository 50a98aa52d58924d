package email

import (
	"regexp"
	"strings"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/tld"
)

// ErrorKind 枚举了邮箱校验失败的精确原因。
// 前端依赖这里的区分来决定提示文案，TldUnavailable还会阻断整个claim路径。
type ErrorKind string

const (
	KindNone           ErrorKind = ""
	KindEmpty          ErrorKind = "EMPTY"
	KindTooShort       ErrorKind = "TOO_SHORT"
	KindTooLong        ErrorKind = "TOO_LONG"
	KindNonASCII       ErrorKind = "NON_ASCII"
	KindWhitespace     ErrorKind = "WHITESPACE"
	KindAtCount        ErrorKind = "AT_COUNT"
	KindIncomplete     ErrorKind = "INCOMPLETE"
	KindLocalDot       ErrorKind = "LOCAL_DOT"
	KindDoubleDot      ErrorKind = "DOUBLE_DOT"
	KindLocalCharset   ErrorKind = "LOCAL_CHARSET"
	KindDomainShape    ErrorKind = "DOMAIN_SHAPE"
	KindDomainCharset  ErrorKind = "DOMAIN_CHARSET"
	KindNoDot          ErrorKind = "NO_DOT"
	KindTldTooShort    ErrorKind = "TLD_TOO_SHORT"
	KindTldUnavailable ErrorKind = "TLD_UNAVAILABLE"
	KindTldInvalid     ErrorKind = "TLD_INVALID"
	KindLabelShape     ErrorKind = "LABEL_SHAPE"
)

// Result 是一次校验的完整结果。
// Normalized 在失败时也会返回，便于上层展示用户实际提交的内容。
type Result struct {
	OK         bool
	Normalized string
	Kind       ErrorKind
	Message    string
}

// 面向用户的德语提示文案，与前端保持一致。
var messages = map[ErrorKind]string{
	KindEmpty:          "E-Mail darf nicht leer sein",
	KindTooShort:       "E-Mail ist zu kurz",
	KindTooLong:        "E-Mail ist zu lang",
	KindNonASCII:       "Nur ASCII-Zeichen sind erlaubt",
	KindWhitespace:     "E-Mail darf keine Leerzeichen enthalten",
	KindAtCount:        "E-Mail muss genau ein @ enthalten",
	KindIncomplete:     "E-Mail ist unvollstaendig",
	KindLocalDot:       "Lokaler Teil darf nicht mit Punkt starten oder enden",
	KindDoubleDot:      "Zwei Punkte hintereinander sind nicht erlaubt",
	KindLocalCharset:   "Lokaler Teil enthaelt ungueltige Zeichen",
	KindDomainShape:    "Domain ist ungueltig",
	KindDomainCharset:  "Domain enthaelt ungueltige Zeichen",
	KindNoDot:          "Domain muss einen Punkt enthalten",
	KindTldTooShort:    "Top-Level-Domain ist zu kurz",
	KindTldUnavailable: "TLD-Liste ist nicht geladen",
	KindTldInvalid:     "Top-Level-Domain ist nicht gueltig",
	KindLabelShape:     "Domain ist ungueltig",
}

var (
	localPartRe  = regexp.MustCompile("^[a-z0-9.!#$%&'*+/=?^_`{|}~-]+$")
	domainPartRe = regexp.MustCompile(`^[a-z0-9.-]+$`)
	whitespaceRe = regexp.MustCompile(`\s`)
)

// Validator 持有校验依赖的TLD集合。
type Validator struct {
	tlds *tld.Set
}

// NewValidator 创建一个邮箱校验器。
func NewValidator(tlds *tld.Set) *Validator {
	return &Validator{tlds: tlds}
}

func fail(normalized string, kind ErrorKind) Result {
	return Result{OK: false, Normalized: normalized, Kind: kind, Message: messages[kind]}
}

// Validate 按固定顺序执行全部语法规则，返回第一条不满足的规则。
// 规则顺序是对外契约的一部分，不可调整。
func (v *Validator) Validate(input string) Result {
	normalized := strings.ToLower(strings.TrimSpace(input))

	if normalized == "" {
		return fail(normalized, KindEmpty)
	}
	if len(normalized) < 6 {
		return fail(normalized, KindTooShort)
	}
	if len(normalized) > 254 {
		return fail(normalized, KindTooLong)
	}
	for i := 0; i < len(normalized); i++ {
		if normalized[i] > 0x7F {
			return fail(normalized, KindNonASCII)
		}
	}
	if whitespaceRe.MatchString(normalized) {
		return fail(normalized, KindWhitespace)
	}
	if strings.Count(normalized, "@") != 1 {
		return fail(normalized, KindAtCount)
	}

	at := strings.Index(normalized, "@")
	localPart, domainPart := normalized[:at], normalized[at+1:]
	if localPart == "" || domainPart == "" {
		return fail(normalized, KindIncomplete)
	}

	if strings.HasPrefix(localPart, ".") || strings.HasSuffix(localPart, ".") {
		return fail(normalized, KindLocalDot)
	}
	if strings.Contains(localPart, "..") || strings.Contains(domainPart, "..") {
		return fail(normalized, KindDoubleDot)
	}
	if !localPartRe.MatchString(localPart) {
		return fail(normalized, KindLocalCharset)
	}

	if strings.HasPrefix(domainPart, "-") || strings.HasSuffix(domainPart, "-") ||
		strings.HasPrefix(domainPart, ".") || strings.HasSuffix(domainPart, ".") {
		return fail(normalized, KindDomainShape)
	}
	if !domainPartRe.MatchString(domainPart) {
		return fail(normalized, KindDomainCharset)
	}
	if !strings.Contains(domainPart, ".") {
		return fail(normalized, KindNoDot)
	}

	labels := strings.Split(domainPart, ".")
	tldToken := labels[len(labels)-1]

	if len(tldToken) < 2 {
		return fail(normalized, KindTldTooShort)
	}
	// TLD集合未加载时不能把所有TLD一律判为非法，
	// 必须返回独立的"不可用"原因，由上层阻断claim。
	if !v.tlds.Available() {
		return fail(normalized, KindTldUnavailable)
	}
	if !v.tlds.Contains(tldToken) {
		return fail(normalized, KindTldInvalid)
	}

	for _, label := range labels {
		if label == "" || len(label) > 63 ||
			strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return fail(normalized, KindLabelShape)
		}
	}

	return Result{OK: true, Normalized: normalized}
}
