package engine

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

type sourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

const vlqDigits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// inlineSourceMap builds a line-level map from out back to src and returns
// it as a sourceMappingURL comment. origins[n] is the source line output
// line n starts on; each output line maps to column 0 of that line.
func inlineSourceMap(src, out string, origins []int, cfg *SourceMapConfig) string {
	source := cfg.InFile
	if source == "" {
		source = "stdin"
	}

	var mappings strings.Builder
	prev := 0
	for i, line := range origins {
		if i > 0 {
			mappings.WriteByte(';')
		}
		mappings.WriteString("AA")
		writeVLQ(&mappings, line-prev)
		mappings.WriteByte('A')
		prev = line
	}

	m := sourceMap{
		Version:        3,
		File:           cfg.InFile,
		SourceRoot:     cfg.SourceRoot,
		Sources:        []string{source},
		SourcesContent: []string{src},
		Names:          []string{},
		Mappings:       mappings.String(),
	}
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}

	sep := "\n"
	if strings.HasSuffix(out, "\n") {
		sep = ""
	}
	return sep + "//# sourceMappingURL=data:application/json;charset=utf-8;base64," +
		base64.StdEncoding.EncodeToString(data) + "\n"
}

// writeVLQ appends n as a base64 VLQ digit sequence.
func writeVLQ(b *strings.Builder, n int) {
	v := n << 1
	if n < 0 {
		v = (-n)<<1 | 1
	}
	for {
		digit := v & 31
		v >>= 5
		if v > 0 {
			digit |= 32
		}
		b.WriteByte(vlqDigits[digit])
		if v == 0 {
			return
		}
	}
}
