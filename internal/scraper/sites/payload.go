package sites

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// payloadRatioDivisor — делитель поля _v, который использует клиент bubilet.
const payloadRatioDivisor = 7

var ErrMalformedPayload = errors.New("malformed payload")

// EncodedPayload — обфусцированный ответ bubilet с ценами.
// _d = мусорный префикс + base64(JSON в UTF-8), длина префикса = _v / 7.
type EncodedPayload struct {
	Data  string  `json:"_d"`
	Ratio float64 `json:"_v"`
}

// DecodePayload повторяет логику сайта: если индекс разреза равен длине строки,
// данных нет и возвращается пустой объект.
func DecodePayload(p EncodedPayload) (json.RawMessage, error) {
	split := p.Ratio / payloadRatioDivisor
	if math.IsNaN(split) || math.IsInf(split, 0) {
		return nil, fmt.Errorf("%w: ratio %v", ErrMalformedPayload, p.Ratio)
	}

	runes := []rune(p.Data)
	if float64(len(runes)) == split {
		return json.RawMessage("{}"), nil
	}

	idx := int(split)
	if idx < 0 {
		idx = max(len(runes)+idx, 0)
	}
	idx = min(idx, len(runes))

	decoded, err := decodeBase64(string(runes[idx:]))
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrMalformedPayload, err)
	}

	if !utf8.Valid(decoded) {
		return nil, fmt.Errorf("%w: not utf-8", ErrMalformedPayload)
	}

	if !json.Valid(decoded) {
		return nil, fmt.Errorf("%w: not json", ErrMalformedPayload)
	}

	return json.RawMessage(decoded), nil
}

// DecodePayloadInto декодирует payload и раскладывает результат в v.
func DecodePayloadInto(p EncodedPayload, v any) error {
	raw, err := DecodePayload(p)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// decodeBase64 принимает строку с паддингом и без, пробельные символы игнорирует (как atob).
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	if decoded, err := base64.StdEncoding.DecodeString(s); err == nil {
		return decoded, nil
	}

	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
