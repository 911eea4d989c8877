package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/addrsync/logger"
	log "github.com/sirupsen/logrus"
)

var _ = Describe("Logger", func() {
	var (
		l         *logger.LoggerImpl
		logOutput *bytes.Buffer
	)

	decode := func() map[string]interface{} {
		var actual map[string]interface{}
		Expect(json.Unmarshal(logOutput.Bytes(), &actual)).To(Succeed())
		return actual
	}

	BeforeEach(func() {
		l = logger.NewLogger("test-service", "debug", true)
		logOutput = bytes.NewBufferString("")
		l.SetOutput(logOutput)
		l.SetFormatter(&log.JSONFormatter{})
	})

	It("Should have `test-service` as service name", func() {
		l.Info("Testing")
		Expect(decode()["service"]).To(Equal("test-service"))
	})

	It("Should have info as log level", func() {
		l.Info("Testing")
		Expect(decode()["level"]).To(Equal("info"))
	})

	It("Should have warning as log level", func() {
		l.Warn("Testing")
		Expect(decode()["level"]).To(Equal("warning"))
	})

	It("Should have error as log level with a stack trace", func() {
		l.Error("Testing")
		actual := decode()
		Expect(actual["level"]).To(Equal("error"))
		Expect(actual["stackTrace"]).ToNot(BeNil())
	})

	It("Should have `Testing` as msg", func() {
		l.Info("Testing")
		Expect(decode()["msg"]).To(Equal("Testing"))
	})

	It("Should carry fields added with WithField", func() {
		l.WithField("run", "abc123").Info("Testing")
		actual := decode()
		Expect(actual["run"]).To(Equal("abc123"))
		Expect(actual["service"]).To(Equal("test-service"))
	})

	It("Should drop lines below the configured level", func() {
		quiet := logger.NewLogger("test-service", "warn", false)
		quiet.SetOutput(logOutput)
		quiet.Info("hidden")
		Expect(logOutput.Len()).To(BeZero())
	})

	It("Should reject an unknown level", func() {
		_, err := logger.New(logger.Options{Service: "test-service", Level: "loud"})
		Expect(err).To(HaveOccurred())
	})

	Context("with a log file", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "addrsync-logger")
			Expect(err).ToNot(HaveOccurred())
		})

		AfterEach(func() {
			os.RemoveAll(dir)
		})

		It("Should append plain text lines to the file", func() {
			fn := filepath.Join(dir, "test.log")
			for i := 0; i < 2; i++ {
				fl, err := logger.New(logger.Options{
					Service: "test-service",
					Level:   "info",
					LogFile: fn,
					Console: bytes.NewBufferString(""),
				})
				Expect(err).ToNot(HaveOccurred())
				fl.Info("line")
				Expect(fl.Close()).To(Succeed())
			}
			b, err := os.ReadFile(fn)
			Expect(err).ToNot(HaveOccurred())
			Expect(bytes.Count(b, []byte("msg=line"))).To(Equal(2))
			Expect(string(b)).To(ContainSubstring("service=test-service"))
			Expect(string(b)).ToNot(ContainSubstring("\x1b["))
		})
	})
})
