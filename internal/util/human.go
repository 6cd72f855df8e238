package util

import "fmt"

// Human formats a byte count with binary prefixes, e.g. "1.5 KiB".
func Human(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}

	const units = "KMGT"
	v := float64(n) / 1024
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}

	return fmt.Sprintf("%.1f %ciB", v, units[i])
}
