package nasdaq

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"secmaster/src/helpers"
	"secmaster/src/logger"
	"secmaster/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nasdaqListed = `Symbol|Security Name|Market Category|Test Issue|Financial Status|Round Lot Size|ETF|NextShares
AAPL|Apple Inc. - Common Stock|Q|N|N|100|N|N
ZXZZT|NASDAQ TEST STOCK|G|Y|N|100|N|N
MSFT|Microsoft Corporation - Common Stock|Q|N|N|100|N|N
File Creation Time: 0105202418:01|||||||
`

const otherListed = `ACT Symbol|Security Name|Exchange|CQS Symbol|ETF|Round Lot Size|Test Issue|NASDAQ Symbol
BRK.B|Berkshire Hathaway Inc. New Common Stock|N|BRK.B|N|100|N|BRK.B
IBM|International Business Machines Corporation Common Stock|N|IBM|N|100|N|IBM
SHORT|row
File Creation Time: 0105202418:01|||||||
`

func TestParseNasdaqListed(t *testing.T) {
	rows, err := Parse(strings.NewReader(nasdaqListed), []int{0, 1, 3})
	require.NoError(t, err)

	assert.Equal(t, []models.MListing{
		{Symbol: "AAPL", Name: "Apple Inc. - Common Stock", TestIssue: "N"},
		{Symbol: "ZXZZT", Name: "NASDAQ TEST STOCK", TestIssue: "Y"},
		{Symbol: "MSFT", Name: "Microsoft Corporation - Common Stock", TestIssue: "N"},
	}, rows)
}

func TestParseOtherListed(t *testing.T) {
	rows, err := Parse(strings.NewReader(otherListed), []int{0, 1, 6})
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "BRK.B", rows[0].Symbol)
	assert.Equal(t, "IBM", rows[1].Symbol)
	assert.Equal(t, "N", rows[1].TestIssue)
}

func TestParseRejectsBadColumns(t *testing.T) {
	_, err := Parse(strings.NewReader(nasdaqListed), []int{0, 1})
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nasdaqlisted.txt")
	require.NoError(t, os.WriteFile(path, []byte(nasdaqListed), 0o644))

	rows, err := ParseFile(path, []int{0, 1, 3})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = ParseFile(filepath.Join(t.TempDir(), "none.txt"), []int{0, 1, 3})
	assert.Error(t, err)
}

func TestDownloadUnreachableServer(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	f := NewFTPFetcher(models.MListingsConfig{Server: addr, User: "anonymous", Timeout: time.Second}, logger.Discard())
	err = f.Download(context.Background(), []string{"nasdaqlisted.txt"}, t.TempDir())

	assert.Equal(t, "network", helpers.Kind(err))
}
