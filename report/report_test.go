package report_test

import (
	"bytes"
	"errors"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ctxswitch/report"
	"github.com/sarchlab/ctxswitch/timing/cache"
	"github.com/sarchlab/ctxswitch/timing/config"
	"github.com/sarchlab/ctxswitch/workload"
)

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

var _ = Describe("Reporter", func() {
	It("should write the streaming line and the summary", func() {
		var out bytes.Buffer
		r := report.New(&out)

		Expect(r.Begin()).To(Succeed())
		Expect(r.Round(12.5)).To(Succeed())
		Expect(r.Round(3.25)).To(Succeed())
		Expect(r.Summary(report.Summary{BufferBytes: 8000, StrideBytes: 64, Min: 3.25})).To(Succeed())

		Expect(out.String()).To(Equal(
			"time2 with context switch: \t12.500000\t3.250000\t\n" +
				"measureSwitch: array_size = 8000, stride = 64, min time2 = 3.250000000000000\n"))
	})

	It("should stream rounds as they are written", func() {
		var out bytes.Buffer
		r := report.New(&out)
		Expect(r.Begin()).To(Succeed())
		Expect(r.Round(1)).To(Succeed())
		Expect(out.String()).To(HaveSuffix("1.000000\t"))
	})

	It("should return write failures", func() {
		r := report.New(brokenWriter{})
		Expect(r.Begin()).To(MatchError("broken pipe"))
		Expect(r.Round(1)).To(MatchError("broken pipe"))
		Expect(r.Summary(report.Summary{})).To(MatchError("broken pipe"))
	})
})

var _ = Describe("Result", func() {
	It("should round trip through a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "result.json")
		pred := cache.Predict(cache.DefaultL1DConfig(),
			workload.Params{BufferElements: 16, StrideElements: 1}, 2)
		res := report.Result{
			Params:     workload.Params{BufferElements: 16, StrideElements: 1},
			Run:        config.DefaultRunConfig(),
			Samples:    []float64{4, 2, 3},
			Min:        2,
			Max:        4,
			Prediction: &pred,
		}

		Expect(report.SaveResult(path, res)).To(Succeed())
		loaded, err := report.LoadResult(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(*loaded).To(Equal(res))
	})

	It("should fail to write into a missing directory", func() {
		path := filepath.Join(GinkgoT().TempDir(), "missing", "result.json")
		Expect(report.SaveResult(path, report.Result{})).To(MatchError(ContainSubstring("failed to write")))
	})
})
