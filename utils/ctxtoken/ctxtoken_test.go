package ctxtoken

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"testing"

	"planner-bff/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawToken(payload string) string {
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	testCases := []struct {
		name   string
		params models.ContextParams
	}{
		{"institute and campus", models.ContextParams{InstituteID: models.Int64(5), CampusID: models.Int64(2)}},
		{"full context", models.ContextParams{
			InstituteID: models.Int64(1),
			CampusID:    models.Int64(7),
			Step:        models.Int64(3),
			IsEdit:      models.Bool(false),
			CourseID:    models.Int64(4411),
			Mode:        models.String(models.ModePlanner),
		}},
		{"only mode", models.ContextParams{Mode: models.String(models.ModeCreate)}},
		{"pending campus sentinel", models.ContextParams{InstituteID: models.Int64(1), CampusID: models.Int64(models.CampusPendingID)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token := Encode(tc.params)
			require.NotEmpty(t, token)

			decoded, ok := Decode(token)
			require.True(t, ok)
			assert.Equal(t, tc.params, *decoded)
		})
	}
}

func TestEncodeIsSparse(t *testing.T) {
	token := Encode(models.ContextParams{InstituteID: models.Int64(5)})
	payload, err := base64.URLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.JSONEq(t, `{"instituteId":5}`, string(payload))
}

func TestDecodeFailsClosed(t *testing.T) {
	testCases := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"whitespace", "   "},
		{"not base64", "%%%not-base64%%%"},
		{"base64 of non json", rawToken("hello world")},
		{"json array", rawToken(`[1,2,3]`)},
		{"json string", rawToken(`"abc"`)},
		{"json null", rawToken(`null`)},
		{"string institute", rawToken(`{"instituteId":"abc"}`)},
		{"numeric string campus", rawToken(`{"campusId":"2"}`)},
		{"null institute", rawToken(`{"instituteId":null}`)},
		{"fractional campus", rawToken(`{"campusId":2.5}`)},
		{"boolean course", rawToken(`{"courseId":true}`)},
		{"numeric mode", rawToken(`{"mode":3}`)},
		{"string isEdit", rawToken(`{"isEdit":"yes"}`)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				params, ok := Decode(tc.token)
				assert.False(t, ok)
				assert.Nil(t, params)
			})
		})
	}
}

func TestDecodePassesUnknownFieldsThrough(t *testing.T) {
	params, ok := Decode(rawToken(`{"instituteId":3,"tab":"hours","week":4}`))
	require.True(t, ok)

	assert.Equal(t, int64(3), *params.InstituteID)
	assert.Equal(t, json.RawMessage(`"hours"`), params.Extra["tab"])
	assert.Equal(t, json.RawMessage(`4`), params.Extra["week"])

	again, ok := Decode(Encode(*params))
	require.True(t, ok)
	assert.Equal(t, params, again)
}

func TestDecodeAcceptsStandardAlphabet(t *testing.T) {
	params, ok := Decode(rawToken(`{"instituteId":5,"campusId":2}`))
	require.True(t, ok)
	assert.Equal(t, int64(5), *params.InstituteID)
	assert.Equal(t, int64(2), *params.CampusID)
}

func TestExtractFromURL(t *testing.T) {
	params, ok := ExtractFromURL(url.Values{})
	assert.False(t, ok)
	assert.Nil(t, params)

	query := url.Values{
		QueryKey:      {Encode(models.ContextParams{InstituteID: models.Int64(5), CampusID: models.Int64(2)})},
		"instituteId": {"99"},
		"mode":        {"planner"},
	}
	params, ok = ExtractFromURL(query)
	require.True(t, ok)
	assert.Equal(t, models.ContextParams{InstituteID: models.Int64(5), CampusID: models.Int64(2)}, *params)
}

func TestBuildQueryParams(t *testing.T) {
	values := BuildQueryParams(models.ContextParams{CourseID: models.Int64(10), Mode: models.String(models.ModeView)})

	require.Len(t, values, 1)
	decoded, ok := ExtractFromURL(values)
	require.True(t, ok)
	assert.Equal(t, int64(10), *decoded.CourseID)
	assert.Equal(t, models.ModeView, decoded.ModeValue())
	assert.Nil(t, decoded.InstituteID)
}
