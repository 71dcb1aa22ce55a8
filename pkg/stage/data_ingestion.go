package stage

import (
	"archive/zip"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-mlpipeline/internal/atomicfile"
	"github.com/askiada/go-mlpipeline/pkg/common"
	"github.com/askiada/go-mlpipeline/pkg/config"
)

const DataIngestionName = "Data Ingestion stage"

// DataIngestion downloads the dataset archive and extracts it.
type DataIngestion struct {
	cfg         *config.DataIngestionConfig
	tk          *common.Toolkit
	client      *http.Client
	concurrency int
}

type DataIngestionOption func(d *DataIngestion)

// WithHTTPClient sets the client used to download the archive.
func WithHTTPClient(client *http.Client) DataIngestionOption {
	return func(d *DataIngestion) {
		if client != nil {
			d.client = client
		}
	}
}

// WithExtractConcurrency sets how many archive entries are extracted at the same time.
func WithExtractConcurrency(concurrency int) DataIngestionOption {
	return func(d *DataIngestion) {
		if concurrency > 0 {
			d.concurrency = concurrency
		}
	}
}

func NewDataIngestion(cfg *config.DataIngestionConfig, tk *common.Toolkit, opts ...DataIngestionOption) *DataIngestion {
	d := &DataIngestion{
		cfg:         cfg,
		tk:          tk,
		client:      http.DefaultClient,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Run downloads then extracts the archive.
func (d *DataIngestion) Run(ctx context.Context) error {
	err := d.DownloadFile(ctx)
	if err != nil {
		return err
	}

	return d.ExtractZipFile(ctx)
}

// DownloadFile fetches the archive unless a previous run already did.
func (d *DataIngestion) DownloadFile(ctx context.Context) error {
	logger := d.tk.Logger()

	if _, err := os.Stat(d.cfg.LocalDataFile); err == nil {
		size, err := d.tk.GetSize(d.cfg.LocalDataFile)
		if err != nil {
			return err
		}

		logger.Info("file already exists", "path", d.cfg.LocalDataFile, "size", size)

		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.cfg.SourceURL, nil)
	if err != nil {
		return errors.Wrapf(err, "unable to create request for %s", d.cfg.SourceURL)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return errors.Wrapf(ErrDownload, "%s: %v", d.cfg.SourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(ErrDownload, "%s: unexpected status %s", d.cfg.SourceURL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(ErrDownload, "%s: %v", d.cfg.SourceURL, err)
	}

	err = atomicfile.WriteFile(d.cfg.LocalDataFile, data, 0o644)
	if err != nil {
		return errors.Wrapf(err, "unable to save %s", d.cfg.LocalDataFile)
	}

	logger.Info("file downloaded", "url", d.cfg.SourceURL, "path", d.cfg.LocalDataFile, "size", humanize.IBytes(uint64(len(data))))

	return nil
}

// ExtractZipFile extracts the archive into the unzip directory. Entries are written
// concurrently; entries resolving outside the directory fail the extraction.
func (d *DataIngestion) ExtractZipFile(ctx context.Context) error {
	err := d.tk.EnsureDirectories([]string{d.cfg.UnzipDir}, false)
	if err != nil {
		return err
	}

	archive, err := zip.OpenReader(d.cfg.LocalDataFile)
	if errors.Is(err, zip.ErrInsecurePath) {
		archive.Close()

		return errors.Wrap(ErrUnsafeArchive, d.cfg.LocalDataFile)
	}

	if err != nil {
		return errors.Wrapf(err, "unable to open archive %s", d.cfg.LocalDataFile)
	}
	defer archive.Close()

	targets := make([]string, len(archive.File))

	for i, file := range archive.File {
		targets[i], err = safeJoin(d.cfg.UnzipDir, file.Name)
		if err != nil {
			return err
		}
	}

	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(d.concurrency)

	var total uint64

	for i, file := range archive.File {
		if file.FileInfo().IsDir() {
			err := d.tk.EnsureDirectories([]string{targets[i]}, false)
			if err != nil {
				_ = errGrp.Wait()

				return err
			}

			continue
		}

		total += file.UncompressedSize64

		errGrp.Go(func() error {
			if err := dCtx.Err(); err != nil {
				return err
			}

			return d.extractFile(file, targets[i])
		})
	}

	err = errGrp.Wait()
	if err != nil {
		return errors.Wrapf(err, "unable to extract %s", d.cfg.LocalDataFile)
	}

	d.tk.Logger().Info("archive extracted", "path", d.cfg.UnzipDir, "entries", len(archive.File), "size", humanize.IBytes(total))

	return nil
}

func (d *DataIngestion) extractFile(file *zip.File, target string) error {
	err := d.tk.EnsureDirectories([]string{filepath.Dir(target)}, false)
	if err != nil {
		return err
	}

	reader, err := file.Open()
	if err != nil {
		return errors.Wrapf(err, "unable to open entry %s", file.Name)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return errors.Wrapf(err, "unable to read entry %s", file.Name)
	}

	err = atomicfile.WriteFile(target, data, 0o644)
	if err != nil {
		return errors.Wrapf(err, "unable to write entry %s", file.Name)
	}

	return nil
}

func safeJoin(dir, name string) (string, error) {
	base := filepath.Clean(dir)
	target := filepath.Join(base, name)

	if target != base && !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return "", errors.Wrap(ErrUnsafeArchive, name)
	}

	return target, nil
}
