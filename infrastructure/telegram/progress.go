package telegram

import (
	"backup-courier/domain"
	"io"
	"log/slog"
)

const progressStep = 10

// progressReader logs the upload progress every progressStep percent.
type progressReader struct {
	log      *slog.Logger
	name     string
	total    int64
	read     int64
	reported int
	reader   io.Reader
}

func newProgressReader(log *slog.Logger, name string, total int64, reader io.Reader) *progressReader {
	return &progressReader{log: log, name: name, total: total, reader: reader}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.reader.Read(b)
	p.read += int64(n)
	if p.total > 0 {
		percent := int(p.read * 100 / p.total)
		if percent >= p.reported+progressStep {
			p.reported = percent - percent%progressStep
			p.log.Info("Uploading", "name", p.name, "percent", p.reported,
				"sent_mb", domain.SizeInMB(p.read), "total_mb", domain.SizeInMB(p.total))
		}
	}
	return n, err
}
