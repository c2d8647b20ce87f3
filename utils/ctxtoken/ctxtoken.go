// Package ctxtoken encodes the navigation context into the opaque ctx URL token.
//
// The token is Base64 over JSON. It is obfuscation against casual URL editing, not
// authentication: every resource the context points to is still authorized by the backend.
package ctxtoken

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"

	"planner-bff/models"

	"github.com/tidwall/gjson"
)

// QueryKey is the only query parameter that carries context
const QueryKey = "ctx"

var numericKeys = []string{
	models.ParamInstituteID,
	models.ParamCampusID,
	models.ParamCourseID,
	models.ParamStep,
}

// Encode serializes the defined fields of params. It returns "" if serialization fails.
func Encode(params models.ContextParams) (token string) {
	defer func() {
		if recover() != nil {
			token = ""
		}
	}()

	payload, err := json.Marshal(params)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(payload)
}

// Decode parses a token. It returns false for an empty token, bad Base64, bad JSON,
// a non-object payload or a known field of the wrong type. It never panics.
func Decode(token string) (params *models.ContextParams, ok bool) {
	defer func() {
		if recover() != nil {
			params, ok = nil, false
		}
	}()

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, false
	}

	payload, ok := decodeBase64(token)
	if !ok {
		return nil, false
	}

	if !gjson.ValidBytes(payload) {
		return nil, false
	}
	parsed := gjson.ParseBytes(payload)
	if !parsed.IsObject() {
		return nil, false
	}
	for _, key := range numericKeys {
		if field := parsed.Get(key); field.Exists() && field.Type != gjson.Number {
			return nil, false
		}
	}

	var decoded models.ContextParams
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, false
	}
	return &decoded, true
}

// ExtractFromURL decodes the ctx query parameter. Every other parameter is ignored.
func ExtractFromURL(query url.Values) (*models.ContextParams, bool) {
	token, present := query[QueryKey]
	if !present || len(token) == 0 {
		return nil, false
	}
	return Decode(token[0])
}

// BuildQueryParams returns {ctx: token} for the provided fields
func BuildQueryParams(params models.ContextParams) url.Values {
	return url.Values{QueryKey: {Encode(params)}}
}

// decodeBase64 accepts the URL-safe and standard alphabets, padded or not
func decodeBase64(token string) ([]byte, bool) {
	for _, enc := range []*base64.Encoding{
		base64.URLEncoding,
		base64.StdEncoding,
		base64.RawURLEncoding,
		base64.RawStdEncoding,
	} {
		if payload, err := enc.DecodeString(token); err == nil {
			return payload, true
		}
	}
	return nil, false
}
