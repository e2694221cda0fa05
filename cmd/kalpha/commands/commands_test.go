package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/kalpha/internal/config"
	"github.com/okian/kalpha/pkg/logger"
)

const ratings = `# coders as rows
1 2 3 4
1 2 3 5
2 2 3 4
`

// run executes the command line with args and returns stdout.
func run(stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompute(t *testing.T) {
	t.Setenv(config.EnvConfig, "")

	Convey("Given a whitespace separated ratings file", t, func() {
		path := writeFile(t, "ratings.txt", ratings)

		Convey("When computing the nominal metric", func() {
			out, err := run("", "compute", path, "--metric", "nominal")

			Convey("Then alpha is printed with three decimals", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "nominal metric: 0.600\n")
			})
		})

		Convey("When computing every metric", func() {
			out, err := run("", "compute", path, "--all")

			Convey("Then one line per built-in metric is printed", func() {
				So(err, ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(out), "\n")
				So(lines, ShouldHaveLength, 3)
				So(lines[0], ShouldEqual, "nominal metric: 0.600")
				So(lines[1], ShouldEqual, "interval metric: 0.890")
				So(lines[2], ShouldStartWith, "ratio metric: ")
			})
		})

		Convey("When no metric is named", func() {
			out, err := run("", "compute", path)

			Convey("Then the configured default applies", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "interval metric: 0.890\n")
			})
		})

		Convey("When JSON output is requested", func() {
			out, err := run("", "compute", path, "-m", "nominal", "-o", "json")

			Convey("Then a report list is printed", func() {
				So(err, ShouldBeNil)
				var reports []map[string]any
				So(json.Unmarshal([]byte(out), &reports), ShouldBeNil)
				So(reports, ShouldHaveLength, 1)
				So(reports[0]["metric"], ShouldEqual, "nominal")
				So(reports[0]["alpha"], ShouldAlmostEqual, 0.6, 1e-9)
				So(reports[0]["items"], ShouldEqual, 4.0)
			})
		})

		Convey("When the absolute metric is forced through the bulk path", func() {
			out, err := run("", "compute", path, "-m", "absolute", "--force-bulk", "-o", "json")

			Convey("Then the custom metric is used and vectorized", func() {
				So(err, ShouldBeNil)
				var reports []map[string]any
				So(json.Unmarshal([]byte(out), &reports), ShouldBeNil)
				So(reports, ShouldHaveLength, 1)
				So(reports[0]["metric"], ShouldEqual, "absolute")
				So(reports[0]["vectorized"], ShouldEqual, true)
				So(reports[0]["alpha"], ShouldAlmostEqual, 1-132.0/564.0, 1e-9)
			})
		})

		Convey("When the absolute metric is named in text mode", func() {
			out, err := run("", "compute", path, "--metric", "absolute")

			Convey("Then it prints like a built-in", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "absolute metric: 0.766\n")
			})
		})

		Convey("When the metric is unknown", func() {
			_, err := run("", "compute", path, "--metric", "cosine")

			Convey("Then the command fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the output format is unknown", func() {
			_, err := run("", "compute", path, "-o", "yaml")

			Convey("Then the command fails", func() {
				So(errors.Is(err, errInvalidFlag), ShouldBeTrue)
			})
		})
	})

	Convey("Given ratings on stdin", t, func() {
		Convey("When the table is comma separated with items as rows", func() {
			in := "1,1,2\n2,2,2\n3,3,3\n4,5,4\n"
			out, err := run(in, "compute", "-", "-d", ",", "--orientation", "items", "-m", "nominal")

			Convey("Then the result matches the coder oriented table", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "nominal metric: 0.600\n")
			})
		})

		Convey("When the table uses labels with a header row", func() {
			in := "x\ty\tz\nlow\tlow\thigh\nlow\tmid\thigh\n"
			out, err := run(in, "compute", "--delimiter", `\t`, "--header", "--categorical", "-m", "nominal")

			Convey("Then categories are coded by first appearance", func() {
				So(err, ShouldBeNil)
				So(out, ShouldStartWith, "nominal metric: ")
			})
		})
	})

	Convey("Given a JSON document mixing keyed and positional coders", t, func() {
		doc := `{"coders": [
			{"0": 1, "1": 2, "2": 3, "3": 4},
			[1, 2, 3, 5],
			{"3": 4, "2": 3, "1": 2, "0": 2}
		]}`
		path := writeFile(t, "ratings.json", doc)

		Convey("When computing by file extension", func() {
			out, err := run("", "compute", path, "-m", "nominal")

			Convey("Then the coders are aligned by item", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "nominal metric: 0.600\n")
			})
		})
	})

	Convey("Given a config file", t, func() {
		cfgPath := writeFile(t, "kalpha.yaml", "metric: nominal\nmissing: [\"NA\"]\n")
		path := writeFile(t, "ratings.txt", "1 2 3 4 NA\n1 2 3 5 NA\n2 2 3 4 NA\n")

		Convey("When no metric flag is given", func() {
			out, err := run("", "--config", cfgPath, "compute", path)

			Convey("Then the configured metric and missing markers apply", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "nominal metric: 0.600\n")
			})
		})

		Convey("When the metric flag is given", func() {
			out, err := run("", "--config", cfgPath, "compute", path, "--metric", "interval")

			Convey("Then the flag wins", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "interval metric: 0.890\n")
			})
		})
	})
}

func TestParseDelimiter(t *testing.T) {
	Convey("parseDelimiter", t, func() {
		for in, want := range map[string]rune{"": 0, ",": ',', `\t`: '\t', "tab": '\t', ";": ';'} {
			got, err := parseDelimiter(in)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}

		_, err := parseDelimiter("::")
		So(errors.Is(err, errInvalidFlag), ShouldBeTrue)
	})
}

func TestServe(t *testing.T) {
	Convey("Given a running server", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"
		cfg.WorkerCount = 2

		ctx, cancel := context.WithCancel(context.Background())
		addrCh := make(chan string, 1)
		done := make(chan error, 1)
		go func() {
			done <- runServe(ctx, cfg, logger.Discard(), func(addr string) { addrCh <- addr })
		}()

		var base string
		select {
		case addr := <-addrCh:
			base = "http://" + addr
		case err := <-done:
			t.Fatalf("server exited early: %v", err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not start")
		}

		Reset(func() {
			cancel()
			select {
			case <-done:
			case <-time.After(10 * time.Second):
				t.Error("server did not stop")
			}
		})

		client := &http.Client{Timeout: 5 * time.Second}

		Convey("When probing health", func() {
			resp, err := client.Get(base + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it reports ok", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When computing alpha", func() {
			body := `{"metric":"nominal","coders":[[1,2,3,4],[1,2,3,5],[2,2,3,4]]}`
			resp, err := client.Post(base+"/alpha", "application/json", strings.NewReader(body))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the report is returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var report map[string]any
				So(json.NewDecoder(resp.Body).Decode(&report), ShouldBeNil)
				So(report["alpha"], ShouldAlmostEqual, 0.6, 1e-9)
			})
		})

		Convey("When fetching the API document", func() {
			resp, err := client.Get(base + "/openapi.yaml")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it is served", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}
