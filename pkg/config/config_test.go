package config

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

var _ = Describe("Config", func() {
	Describe("Default", func() {
		It("points at a local Open WebUI without a token", func() {
			cfg := Default()
			gomega.Expect(cfg.UpstreamURL).To(gomega.Equal("http://localhost:3000"))
			gomega.Expect(cfg.APIKey).To(gomega.BeEmpty())
			gomega.Expect(cfg.ListenAddr).To(gomega.Equal(":8000"))
			gomega.Expect(cfg.Debug).To(gomega.BeFalse())
		})
	})

	Describe("applyEnv", func() {
		It("overrides the upstream URL and token", func() {
			cfg := Default()
			err := cfg.applyEnv(lookupFrom(map[string]string{
				EnvUpstreamURL: "http://webui:8080",
				EnvAPIKey:      "sk-abc",
			}))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cfg.UpstreamURL).To(gomega.Equal("http://webui:8080"))
			gomega.Expect(cfg.APIKey).To(gomega.Equal("sk-abc"))
		})

		It("keeps the default upstream when the variable is empty", func() {
			cfg := Default()
			gomega.Expect(cfg.applyEnv(lookupFrom(map[string]string{EnvUpstreamURL: ""}))).To(gomega.Succeed())
			gomega.Expect(cfg.UpstreamURL).To(gomega.Equal(DefaultUpstreamURL))
		})

		It("parses the debug flag", func() {
			cfg := Default()
			gomega.Expect(cfg.applyEnv(lookupFrom(map[string]string{EnvDebug: "true"}))).To(gomega.Succeed())
			gomega.Expect(cfg.Debug).To(gomega.BeTrue())
		})

		It("rejects an invalid debug value", func() {
			cfg := Default()
			err := cfg.applyEnv(lookupFrom(map[string]string{EnvDebug: "maybe"}))
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring(EnvDebug)))
		})
	})

	Describe("Load", func() {
		var tmpDir string

		BeforeEach(func() {
			tmpDir = GinkgoT().TempDir()
			for _, key := range []string{EnvUpstreamURL, EnvAPIKey, EnvListenAddr, EnvDebug} {
				GinkgoT().Setenv(key, "")
			}
		})

		It("reads values from a TOML file", func() {
			path := filepath.Join(tmpDir, "relay.toml")
			gomega.Expect(os.WriteFile(path, []byte(`
listen = ":9090"
upstream_url = "http://webui.internal"
api_key = "from-file"
debug = true
`), 0o600)).To(gomega.Succeed())

			cfg, err := Load(path)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cfg.ListenAddr).To(gomega.Equal(":9090"))
			gomega.Expect(cfg.UpstreamURL).To(gomega.Equal("http://webui.internal"))
			gomega.Expect(cfg.Debug).To(gomega.BeTrue())
		})

		It("lets the environment override the file", func() {
			path := filepath.Join(tmpDir, "relay.toml")
			gomega.Expect(os.WriteFile(path, []byte(`upstream_url = "http://webui.internal"`), 0o600)).To(gomega.Succeed())
			GinkgoT().Setenv(EnvUpstreamURL, "http://override:3000")

			cfg, err := Load(path)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cfg.UpstreamURL).To(gomega.Equal("http://override:3000"))
		})

		It("fails on a missing config file", func() {
			_, err := Load(filepath.Join(tmpDir, "missing.toml"))
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})
})
