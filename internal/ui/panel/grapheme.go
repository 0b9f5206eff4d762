package panel

import "github.com/rivo/uniseg"

func cutFirstGrapheme(text string) (string, string, bool) {
	if text == "" {
		return "", "", false
	}
	cluster, rest, _, _ := uniseg.FirstGraphemeClusterInString(text, -1)
	return cluster, rest, true
}
