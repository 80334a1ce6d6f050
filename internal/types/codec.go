package types

import (
	"github.com/bytedance/sonic"
)

// json is the std-compatible sonic configuration used for workspace documents
var json = sonic.ConfigStd

// DecodeJSON parses a workspace document
func DecodeJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// EncodeJSON renders a workspace document with two-space indentation
func EncodeJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
