package output

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/pkg/errors"
)

var reNumberSuffix = regexp.MustCompile(`\.(\d+)$`)

// FileWriter saves a downloaded response body.
type FileWriter struct {
	fullPath string
	resume   bool
	offset   int64
}

// NewFileWriter picks the download destination. Without --output the name
// comes from the URL path and never overwrites an existing file. With
// --continue the size of an existing file becomes the resume offset.
func NewFileWriter(u *url.URL, options *Options) *FileWriter {
	w := &FileWriter{resume: options.Resume}

	if options.OutputFile == "" {
		w.fullPath = makeNonOverlappingFilename(filenameFromURL(u))
		return w
	}

	w.fullPath = options.OutputFile
	if options.Resume {
		if info, err := os.Stat(w.fullPath); err == nil {
			w.offset = info.Size()
		}
	}
	return w
}

func filenameFromURL(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "/" || name == "." || name == "" {
		name = "index"
	}
	return name
}

func makeNonOverlappingFilename(filename string) string {
	_, err := os.Stat(filename)
	if err == nil {
		newPath := reNumberSuffix.ReplaceAllStringFunc(filename, func(index string) string {
			i, err := strconv.Atoi(strings.TrimPrefix(index, "."))
			if err != nil {
				panic(err)
			}
			i++
			return fmt.Sprintf(".%d", i)
		})
		if filename == newPath {
			filename = fmt.Sprintf("%s.%d", filename, 1)
		} else {
			filename = newPath
		}
		filename = makeNonOverlappingFilename(filename)
	}
	return filename
}

// ResumeOffset is the number of bytes already downloaded, or 0.
func (f *FileWriter) ResumeOffset() int64 {
	return f.offset
}

// PrepareRequest asks the server for the missing part of a resumed download.
func (f *FileWriter) PrepareRequest(r *http.Request) {
	if f.offset > 0 {
		r.Header.Set("Range", fmt.Sprintf("bytes=%d-", f.offset))
	}
}

// Download writes the response body to the destination file, reporting
// progress to progress.
func (f *FileWriter) Download(resp *http.Response, progress io.Writer) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	written := int64(0)
	if f.offset > 0 && resp.StatusCode == http.StatusPartialContent {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		written = f.offset
	}

	file, err := os.OpenFile(f.fullPath, flags, 0o644)
	if err != nil {
		return errors.Wrapf(err, "opening %s", f.fullPath)
	}
	defer file.Close()

	total := int64(-1)
	if resp.ContentLength >= 0 {
		total = written + resp.ContentLength
	}
	fmt.Fprintf(progress, "Downloading %s to %q\n", sizeString(total), f.fullPath)

	return copyWithProgress(file, resp.Body, progress, written, total)
}

// DownloadTo writes the response body to w (used when stdout is redirected).
func DownloadTo(w io.Writer, resp *http.Response, progress io.Writer) error {
	return copyWithProgress(w, resp.Body, progress, 0, resp.ContentLength)
}

func copyWithProgress(dst io.Writer, src io.Reader, progress io.Writer, written, total int64) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return errors.Wrap(werr, "writing downloaded data")
			}
			written += int64(n)
			if total > 0 {
				fmt.Fprintf(progress, "\r%s / %s (%d%%)", sizeString(written), sizeString(total), written*100/total)
			} else {
				fmt.Fprintf(progress, "\r%s", sizeString(written))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "reading response body")
		}
	}
	fmt.Fprintf(progress, "\nDone. %s\n", sizeString(written))
	return nil
}

func sizeString(n int64) string {
	if n < 0 {
		return "unknown size"
	}
	return bytefmt.ByteSize(uint64(n))
}

func (f *FileWriter) Filename() string {
	return f.fullPath
}
