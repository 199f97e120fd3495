package renderer

import (
	"strings"
	"testing"

	"github.com/quantegy/pnl"
)

func TestLiveMarks(t *testing.T) {
	res := sampleResult(t)

	md := LiveMarks(res, map[string]pnl.Money{
		"BB": pnl.M(18, ""), // short 10 from 20, quoted at 18
		"ZZ": pnl.M(1, ""),  // no such position, must not appear
	}, Options{})

	if !strings.Contains(md, "| BB | -10 | 18 | +20 | +20 |") {
		t.Errorf("missing BB live mark in:\n%s", md)
	}
	if strings.Contains(md, "ZZ") {
		t.Errorf("unexpected ZZ row in:\n%s", md)
	}
}
