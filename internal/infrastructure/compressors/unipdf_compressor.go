package compressors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/model"
	"github.com/unidoc/unipdf/v3/model/optimize"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// ErrUniPDFLicense лицензия UniPDF не настроена
var ErrUniPDFLicense = errors.New("UniPDF требует лицензионный ключ. Установите его в конфигурации или в переменной UNIDOC_LICENSE_API_KEY")

// UniPDFCompressor реализация компрессора с использованием UniPDF
type UniPDFCompressor struct {
	licenseKey  string
	licenseOnce sync.Once
	licenseErr  error
	logger      repositories.Logger
}

// NewUniPDFCompressor создает новый UniPDF компрессор. Пустой ключ берется
// из переменной окружения UNIDOC_LICENSE_API_KEY.
func NewUniPDFCompressor(licenseKey string, logger repositories.Logger) *UniPDFCompressor {
	if licenseKey == "" {
		licenseKey = os.Getenv("UNIDOC_LICENSE_API_KEY")
	}
	return &UniPDFCompressor{licenseKey: licenseKey, logger: logger}
}

// Licensed проверяет наличие лицензионного ключа
func (u *UniPDFCompressor) Licensed() bool {
	return u.licenseKey != ""
}

func (u *UniPDFCompressor) ensureLicense() error {
	u.licenseOnce.Do(func() {
		if u.licenseKey == "" {
			u.licenseErr = ErrUniPDFLicense
			return
		}
		if err := license.SetMeteredKey(u.licenseKey); err != nil {
			u.licenseErr = fmt.Errorf("ошибка установки лицензии UniPDF: %w", err)
		}
	})
	return u.licenseErr
}

// Compress сжимает PDF документ в памяти
func (u *UniPDFCompressor) Compress(ctx context.Context, handle *entities.FileHandle, settings entities.CompressionSettings) (*entities.CompressionOutput, error) {
	return u.CompressWithProgress(ctx, handle, settings, nil)
}

// CompressWithProgress сжимает документ постранично, сообщая долю скопированных страниц
func (u *UniPDFCompressor) CompressWithProgress(ctx context.Context, handle *entities.FileHandle, settings entities.CompressionSettings, report repositories.ProgressReporter) (*entities.CompressionOutput, error) {
	if err := u.ensureLicense(); err != nil {
		return nil, err
	}

	profile := settings.Profile()
	if u.logger != nil {
		u.logger.Debug("Сжатие %s (UniPDF, уровень %s)", handle.Name, profile.Level)
	}

	pdfReader, err := model.NewPdfReader(bytes.NewReader(handle.Data))
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}

	pdfWriter := model.NewPdfWriter()

	options := optimize.Options{
		CombineDuplicateDirectObjects:   profile.RemoveDuplicates,
		CombineIdenticalIndirectObjects: profile.RemoveDuplicates,
		CombineDuplicateStreams:         profile.RemoveDuplicates,
		UseObjectStreams:                profile.CompressStreams,
		CompressStreams:                 profile.CompressStreams,
	}
	if profile.CompressImages {
		options.ImageUpperPPI = profile.ImagePPI
		options.ImageQuality = profile.ImageQuality
	}
	pdfWriter.SetOptimizer(optimize.New(options))

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения количества страниц: %w", err)
	}

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("ошибка получения страницы %d: %w", i, err)
		}
		if err := pdfWriter.AddPage(page); err != nil {
			return nil, fmt.Errorf("ошибка добавления страницы %d: %w", i, err)
		}
		// Копирование страниц занимает первые 80%
		step(report, 0.8*float64(i)/float64(numPages))
	}

	var buf bytes.Buffer
	if err := pdfWriter.Write(&buf); err != nil {
		return nil, fmt.Errorf("ошибка записи файла: %w", err)
	}
	step(report, 0.95)

	return buildOutput(handle, buf.Bytes()), nil
}
