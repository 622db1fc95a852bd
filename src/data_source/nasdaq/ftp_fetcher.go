package nasdaq

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	"secmaster/src/helpers"
	"secmaster/src/logger"
	"secmaster/src/models"

	"github.com/jlaffaye/ftp"
)

const defaultFTPPort = "21"

// FTPFetcher downloads the symbol directory files from the NASDAQ FTP server.
type FTPFetcher struct {
	Config models.MListingsConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewFTPFetcher(cfg models.MListingsConfig, log *logger.Logger) *FTPFetcher {
	return &FTPFetcher{Config: cfg, Logger: log}
}

// -----------------------------------------------------------------------------

// Download retrieves each file into destDir, replacing older copies.
func (f *FTPFetcher) Download(ctx context.Context, filenames []string, destDir string) error {
	f.Logger.Info("Starting to download %d NASDAQ files", len(filenames))

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", destDir, err)
	}

	conn, err := f.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Quit()

	for _, name := range filenames {
		if err := ctx.Err(); err != nil {
			return err
		}
		f.Logger.Info("Downloading file: %s", name)
		if err := f.retrieve(conn, name, filepath.Join(destDir, name)); err != nil {
			return err
		}
	}

	f.Logger.Info("Done downloading %d files from %s/%s as %s", len(filenames), f.Config.Server, f.Config.Dir, f.Config.User)
	return nil
}

// -----------------------------------------------------------------------------

func (f *FTPFetcher) connect(ctx context.Context) (*ftp.ServerConn, error) {
	addr := f.Config.Server
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, defaultFTPPort)
	}

	opts := []ftp.DialOption{ftp.DialWithContext(ctx)}
	if f.Config.Timeout > 0 {
		opts = append(opts, ftp.DialWithTimeout(f.Config.Timeout))
	}

	conn, err := ftp.Dial(addr, opts...)
	if err != nil {
		return nil, helpers.NewNetworkError("cannot reach "+addr, err)
	}

	if err := conn.Login(f.Config.User, f.Config.Password); err != nil {
		conn.Quit()
		return nil, helpers.NewNetworkError("login to "+addr+" as "+f.Config.User, err)
	}
	f.Logger.Info("Connected to %s as %s", addr, f.Config.User)

	if f.Config.Dir != "" {
		if err := conn.ChangeDir(f.Config.Dir); err != nil {
			conn.Quit()
			return nil, helpers.NewNetworkError("change directory to "+f.Config.Dir, err)
		}
	}
	return conn, nil
}

// -----------------------------------------------------------------------------

// retrieve writes to a temporary file first so an interrupted transfer never
// replaces a good copy.
func (f *FTPFetcher) retrieve(conn *ftp.ServerConn, name, dest string) error {
	resp, err := conn.Retr(name)
	if err != nil {
		return helpers.NewNetworkError("RETR "+name, err)
	}
	defer resp.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp); err != nil {
		tmp.Close()
		return helpers.NewNetworkError("download "+name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	return os.Rename(tmp.Name(), dest)
}
