package core

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// https://stackoverflow.com/a/12518877
func FileExists(filePath string) (bool, error) {
	if _, err := os.Stat(filePath); err == nil {
		return true, nil
	} else if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else {
		return false, err
	}
}

// ParseBorder reads "left,right,top,bottom".
func ParseBorder(s string) ([4]int, error) {
	var b [4]int
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return b, fmt.Errorf("%q: want left,right,top,bottom", s)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return b, fmt.Errorf("%q: %w", s, err)
		}
		if n < 0 {
			return b, fmt.Errorf("%q: %d is negative", s, n)
		}
		b[i] = n
	}
	return b, nil
}
