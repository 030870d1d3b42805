// Package shortid は128bitのUUIDをURL向けの22文字base58文字列に相互変換する。
//
// エンコードは常に22文字に左詰めされる（ゼロ桁 '1' でパディング）。
// デコードは22文字のbase58形式と36文字のハイフン区切り16進形式の両方を受け付ける。
package shortid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"

	"event-rsvp-service/internal/domain"
)

const (
	// Alphabet はBitcoin方式のbase58アルファベット（0, O, I, l を含まない）。
	Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

	// EncodedLength は正規形の文字数。
	EncodedLength = 22
	// LegacyLength はハイフン区切りUUIDの文字数。
	LegacyLength = 36

	zeroDigit = '1'
	idSize    = 16
)

const (
	encodedPattern = `[1-9A-HJ-NP-Za-km-z]{22}`
	legacyPattern  = `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`
)

// Pattern はchiのURLパラメータ用の正規表現（例: "{event_id:" + Pattern + "}"）。
// chiは前後にアンカーを付与するため、選択肢全体をグループで囲む。
const Pattern = `(?:` + encodedPattern + `|` + legacyPattern + `)`

var (
	segmentRegex = regexp.MustCompile(`^` + Pattern + `$`)
	legacyRegex  = regexp.MustCompile(`^` + legacyPattern + `$`)
)

// Valid はsがURLパスセグメントとして受理される形式か判定する。
func Valid(s string) bool {
	return segmentRegex.MatchString(s)
}

// Encode はidを22文字のbase58文字列に変換する。
func Encode(id uuid.UUID) string {
	encoded := base58.Encode(id[:])
	if pad := EncodedLength - len(encoded); pad > 0 {
		encoded = strings.Repeat(string(zeroDigit), pad) + encoded
	}
	return encoded
}

// Decode は22文字のbase58文字列、または36文字のUUID文字列をidに変換する。
func Decode(s string) (uuid.UUID, error) {
	switch len(s) {
	case EncodedLength:
		return decodeBase58(s)
	case LegacyLength:
		// uuid.Parseは大文字も受け付けるため、URLの文法と同じ小文字のみに絞る
		if !legacyRegex.MatchString(s) {
			return uuid.Nil, fmt.Errorf("%w: %q is not a lowercase hyphenated uuid", domain.ErrInvalidIdentifier, s)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: %q is not a hyphenated uuid", domain.ErrInvalidIdentifier, s)
		}
		return id, nil
	default:
		return uuid.Nil, fmt.Errorf("%w: unexpected length %d", domain.ErrInvalidIdentifier, len(s))
	}
}

func decodeBase58(s string) (uuid.UUID, error) {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(Alphabet, s[i]) < 0 {
			return uuid.Nil, fmt.Errorf("%w: %q contains a character outside the base58 alphabet", domain.ErrInvalidIdentifier, s)
		}
	}

	digits := strings.TrimLeft(s, string(zeroDigit))
	if digits == "" {
		return uuid.Nil, nil
	}

	raw, err := base58.Decode(digits)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrInvalidIdentifier, err)
	}
	// 22桁のbase58は 2^128 を超える値も表せるため桁あふれを弾く
	if len(raw) > idSize {
		return uuid.Nil, fmt.Errorf("%w: %q exceeds 128 bits", domain.ErrInvalidIdentifier, s)
	}

	var id uuid.UUID
	copy(id[idSize-len(raw):], raw)
	return id, nil
}
