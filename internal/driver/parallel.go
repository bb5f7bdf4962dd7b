package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"lumen/internal/diag"
	"lumen/internal/project"
	"lumen/internal/source"
)

// LoadedUnit содержит результат загрузки одного манифеста юнита
type LoadedUnit struct {
	Path   string            // путь к файлу манифеста
	FileID source.FileID     // ID файла в FileSet
	Meta   *project.UnitMeta // nil, если файл не удалось разобрать
	Bag    *diag.Bag         // диагностики юнита
}

// ListUnitFiles возвращает отсортированный список манифестов юнитов в директории.
// The project manifest itself is skipped.
func ListUnitFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() == project.ManifestName {
			return nil
		}
		if project.FormatOf(path) != project.FormatUnknown {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// LoadUnits читает все файлы в fileSet и декодирует их параллельно.
// Every unit gets its own Bag; the returned slice follows the order of files.
func LoadUnits(ctx context.Context, fileSet *source.FileSet, files []string, maxDiagnostics, jobs int) ([]LoadedUnit, error) {
	results := make([]LoadedUnit, len(files))
	if len(files) == 0 {
		return results, nil
	}

	// FileSet не потокобезопасен на запись: загружаем последовательно
	loadErrors := make(map[int]error, len(files))
	for i, path := range files {
		results[i] = LoadedUnit{Path: path, Bag: diag.NewBag(maxDiagnostics)}
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
			continue
		}
		results[i].FileID = fileID
	}

	// Настраиваем параллелизм
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i := range files {
		g.Go(func() error {
			// Проверка отмены
			if err := gctx.Err(); err != nil {
				return err
			}
			res := &results[i]
			reporter := diag.BagReporter{Bag: res.Bag}
			if loadErr, hadError := loadErrors[i]; hadError {
				diag.ReportError(reporter, diag.IOLoadFileError, source.Span{},
					"failed to load file: "+loadErr.Error()).Emit()
				return nil
			}
			meta, _ := project.DecodeUnit(fileSet, res.FileID, reporter)
			res.Meta = meta
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
