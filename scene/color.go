package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidColor = errors.New("invalid color")

// Color is a linear RGB triple with components in [0,1].
type Color struct {
	R, G, B float64
}

// ColorFromHex builds a color from a 0xRRGGBB integer.
func ColorFromHex(hex uint32) Color {
	return Color{
		R: float64((hex>>16)&0xff) / 255,
		G: float64((hex>>8)&0xff) / 255,
		B: float64(hex&0xff) / 255,
	}
}

// ParseColor accepts "#rrggbb", "rrggbb", "#rgb" or "0xrrggbb".
func ParseColor(s string) (Color, error) {
	raw := strings.TrimSpace(strings.ToLower(s))
	raw = strings.TrimPrefix(raw, "#")
	raw = strings.TrimPrefix(raw, "0x")
	if len(raw) == 3 {
		raw = string([]byte{raw[0], raw[0], raw[1], raw[1], raw[2], raw[2]})
	}
	if len(raw) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return ColorFromHex(uint32(v)), nil
}

// ColorFromValue converts a decoded parameter (string or number) to a color.
func ColorFromValue(v any) (Color, error) {
	switch val := v.(type) {
	case Color:
		return val, nil
	case string:
		return ParseColor(val)
	case float64:
		if val < 0 || val > 0xffffff || val != math.Trunc(val) {
			return Color{}, fmt.Errorf("%w: %v", ErrInvalidColor, val)
		}
		return ColorFromHex(uint32(val)), nil
	case int:
		if val < 0 || val > 0xffffff {
			return Color{}, fmt.Errorf("%w: %v", ErrInvalidColor, val)
		}
		return ColorFromHex(uint32(val)), nil
	default:
		return Color{}, fmt.Errorf("%w: unsupported value %T", ErrInvalidColor, v)
	}
}

// Hex returns the 0xRRGGBB integer form.
func (c Color) Hex() uint32 {
	return uint32(channel(c.R))<<16 | uint32(channel(c.G))<<8 | uint32(channel(c.B))
}

// HexString returns "#rrggbb".
func (c Color) HexString() string {
	return fmt.Sprintf("#%06x", c.Hex())
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.HexString())
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
