package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainClause = "sqlwhere/clause/v2"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ClauseID computes the content-addressed ID of a lowered clause.
// Two clauses with the same text and the same parameter values in the same
// order always share an ID.
//
// Each parameter is hashed with its type, so Int(1) and Float(1) differ.
// Strings, the text included, are hashed as raw bytes without
// normalization, since the database compares them byte for byte.
func ClauseID(text string, params []Literal) (string, error) {
	tagged := make([]any, len(params))
	for i, p := range params {
		t, err := taggedParam(p)
		if err != nil {
			return "", fmt.Errorf("ClauseID: param %d: %w", i, err)
		}
		tagged[i] = t
	}

	obj := map[string]any{
		"text":   hex.EncodeToString([]byte(text)),
		"params": tagged,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ClauseID: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainClause, canonical), nil
}

// taggedParam encodes a parameter as {"t": type, "v": value}.
func taggedParam(l Literal) (map[string]any, error) {
	switch val := l.(type) {
	case Null:
		return map[string]any{"t": "null"}, nil
	case String:
		return map[string]any{"t": "string", "v": hex.EncodeToString([]byte(val))}, nil
	case Int:
		return map[string]any{"t": "int", "v": val}, nil
	case Float:
		return map[string]any{"t": "float", "v": val}, nil
	case Bool:
		return map[string]any{"t": "bool", "v": val}, nil
	default:
		return nil, fmt.Errorf("unsupported literal type %T", l)
	}
}
