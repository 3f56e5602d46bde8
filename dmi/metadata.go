package dmi

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	metaBegin = "# BEGIN DMI"
	metaEnd   = "# END DMI"
)

func atoi(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("dmi: bad %s value %q", key, value)
	}
	return n, nil
}

// parseMetadata parses the text of the Description chunk. Header entries
// appear before the first state block; everything after belongs to the
// most recent state.
func parseMetadata(text string) (Config, error) {
	cfg := Config{Width: DefaultSize, Height: DefaultSize}

	var (
		begun, ended bool
		version      string
		cur          *State
		err          error
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !begun {
			if line != metaBegin {
				return Config{}, fmt.Errorf("dmi: metadata does not start with %q", metaBegin)
			}
			begun = true
			continue
		}
		if line == metaEnd {
			ended = true
			break
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return Config{}, fmt.Errorf("dmi: bad metadata line %q", line)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		if key == "state" {
			name, err := unquoteName(value)
			if err != nil {
				return Config{}, err
			}
			cur = &State{Name: name, Dirs: 1, Frames: 1}
			cfg.States = append(cfg.States, cur)
			continue
		}

		if cur == nil {
			switch key {
			case "version":
				version = value
			case "width":
				if cfg.Width, err = atoi(key, value); err != nil {
					return Config{}, err
				}
			case "height":
				if cfg.Height, err = atoi(key, value); err != nil {
					return Config{}, err
				}
			default:
				return Config{}, fmt.Errorf("dmi: unknown header key %q", key)
			}
			continue
		}

		switch key {
		case "dirs":
			if cur.Dirs, err = atoi(key, value); err != nil {
				return Config{}, err
			}
		case "frames":
			if cur.Frames, err = atoi(key, value); err != nil {
				return Config{}, err
			}
		case "delay":
			for _, s := range strings.Split(value, ",") {
				t, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				if err != nil {
					return Config{}, fmt.Errorf("dmi: bad delay value %q", s)
				}
				cur.Delay = append(cur.Delay, t)
			}
		case "loop":
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return Config{}, fmt.Errorf("dmi: bad loop value %q", value)
			}
			cur.Loop = uint(n)
		case "rewind":
			n, err := atoi(key, value)
			if err != nil {
				return Config{}, err
			}
			cur.Rewind = n != 0
		case "movement":
			n, err := atoi(key, value)
			if err != nil {
				return Config{}, err
			}
			cur.Movement = n != 0
		case "hotspot":
			h := &Hotspot{}
			if _, err := fmt.Sscanf(value, "%d,%d,%d", &h.X, &h.Y, &h.Frame); err != nil {
				return Config{}, fmt.Errorf("dmi: bad hotspot value %q", value)
			}
			cur.Hotspot = h
		default:
			return Config{}, fmt.Errorf("dmi: unknown state key %q", key)
		}
	}

	switch {
	case !begun:
		return Config{}, fmt.Errorf("dmi: empty metadata")
	case !ended:
		return Config{}, fmt.Errorf("dmi: metadata missing %q", metaEnd)
	case !strings.HasPrefix(version, "4."):
		return Config{}, fmt.Errorf("dmi: unsupported version %q", version)
	case cfg.Width < 1 || cfg.Height < 1:
		return Config{}, fmt.Errorf("dmi: bad cell size %dx%d", cfg.Width, cfg.Height)
	}

	for _, s := range cfg.States {
		if s.Dirs < 1 || s.Dirs > 8 {
			return Config{}, fmt.Errorf("dmi: state %q has %d dirs", s.Name, s.Dirs)
		}
		if s.Frames < 1 {
			return Config{}, fmt.Errorf("dmi: state %q has %d frames", s.Name, s.Frames)
		}
	}

	return cfg, nil
}

// serializeMetadata renders the metadata block for m the way the icon
// editor writes it, omitting entries left at their defaults.
func serializeMetadata(m *Icon) string {
	var b strings.Builder

	b.WriteString(metaBegin + "\n")
	fmt.Fprintf(&b, "version = %s\n", Version)
	fmt.Fprintf(&b, "\twidth = %d\n", m.Width)
	fmt.Fprintf(&b, "\theight = %d\n", m.Height)

	for _, s := range m.States {
		fmt.Fprintf(&b, "state = %s\n", quoteName(s.Name))
		fmt.Fprintf(&b, "\tdirs = %d\n", s.Dirs)
		fmt.Fprintf(&b, "\tframes = %d\n", s.Frames)
		if len(s.Delay) > 0 {
			b.WriteString("\tdelay = ")
			for i, t := range s.Delay {
				if i > 0 {
					b.WriteByte(',')
				}
				b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
			}
			b.WriteByte('\n')
		}
		if s.Loop > 0 {
			fmt.Fprintf(&b, "\tloop = %d\n", s.Loop)
		}
		if s.Rewind {
			b.WriteString("\trewind = 1\n")
		}
		if s.Movement {
			b.WriteString("\tmovement = 1\n")
		}
		if s.Hotspot != nil {
			fmt.Fprintf(&b, "\thotspot = %d,%d,%d\n", s.Hotspot.X, s.Hotspot.Y, s.Hotspot.Frame)
		}
	}

	b.WriteString(metaEnd + "\n")

	return b.String()
}

func quoteName(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

func unquoteName(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("dmi: bad state name %s", s)
	}
	s = s[1 : len(s)-1]
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String(), nil
}
