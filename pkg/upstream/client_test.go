package upstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/webui-relay/pkg/llm"
	"github.com/papercomputeco/webui-relay/pkg/upstream"
)

type capturedRequest struct {
	method string
	path   string
	header http.Header
	body   map[string]any
}

var _ = Describe("Client", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		captured chan capturedRequest
		status   int
		respBody string
	)

	BeforeEach(func() {
		ctx = context.Background()
		captured = make(chan capturedRequest, 1)
		status = http.StatusOK
		respBody = `{"reply": "hi"}`

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			var body map[string]any
			_ = json.Unmarshal(data, &body)
			captured <- capturedRequest{
				method: r.Method,
				path:   r.URL.Path,
				header: r.Header.Clone(),
				body:   body,
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(respBody))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("New", func() {
		It("falls back to the default base URL", func() {
			c := upstream.New("", "")
			Expect(c.ChatURL()).To(Equal("http://localhost:3000/api/chat"))
		})

		It("trims trailing slashes from the base URL", func() {
			c := upstream.New("http://webui:8080/", "")
			Expect(c.ChatURL()).To(Equal("http://webui:8080/api/chat"))
		})

		It("uses a fixed 30 second timeout", func() {
			Expect(upstream.Timeout.Seconds()).To(Equal(30.0))
		})
	})

	Describe("Headers", func() {
		It("sends no Authorization header without a token", func() {
			c := upstream.New(server.URL, "")
			Expect(c.Headers().Values("Authorization")).To(BeEmpty())
		})

		It("sends a bearer token when one is configured", func() {
			c := upstream.New(server.URL, "sk-123")
			Expect(c.Headers().Get("Authorization")).To(Equal("Bearer sk-123"))
		})
	})

	Describe("Chat", func() {
		It("posts the message alone to /api/chat", func() {
			c := upstream.New(server.URL, "")
			_, err := c.Chat(ctx, &llm.ChatRequest{Message: "hello"})
			Expect(err).NotTo(HaveOccurred())

			var got capturedRequest
			Eventually(captured).Should(Receive(&got))
			Expect(got.method).To(Equal(http.MethodPost))
			Expect(got.path).To(Equal("/api/chat"))
			Expect(got.body).To(Equal(map[string]any{"message": "hello"}))
			Expect(got.header.Values("Authorization")).To(BeEmpty())
			Expect(got.header.Get("Content-Type")).To(Equal("application/json"))
		})

		It("includes the conversation id and bearer token", func() {
			id := "conv-42"
			c := upstream.New(server.URL, "secret")
			_, err := c.Chat(ctx, &llm.ChatRequest{Message: "hello", ConversationID: &id})
			Expect(err).NotTo(HaveOccurred())

			var got capturedRequest
			Eventually(captured).Should(Receive(&got))
			Expect(got.body).To(Equal(map[string]any{"message": "hello", "conversation_id": "conv-42"}))
			Expect(got.header.Get("Authorization")).To(Equal("Bearer secret"))
		})

		It("returns the upstream body unchanged", func() {
			c := upstream.New(server.URL, "")
			raw, err := c.Chat(ctx, &llm.ChatRequest{Message: "hello"})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(Equal(`{"reply": "hi"}`))
		})

		It("reports a non-2xx status as a communication error", func() {
			status = http.StatusInternalServerError
			respBody = `{"detail":"boom"}`

			c := upstream.New(server.URL, "")
			_, err := c.Chat(ctx, &llm.ChatRequest{Message: "hello"})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(HavePrefix("Error communicating with Open WebUI: "))

			var commErr *upstream.CommunicationError
			Expect(errors.As(err, &commErr)).To(BeTrue())

			var statusErr *upstream.HTTPStatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(statusErr.Body).To(Equal(`{"detail":"boom"}`))
		})

		It("reports a non-JSON success body as a communication error", func() {
			respBody = "<html>login</html>"

			c := upstream.New(server.URL, "")
			_, err := c.Chat(ctx, &llm.ChatRequest{Message: "hello"})

			var commErr *upstream.CommunicationError
			Expect(errors.As(err, &commErr)).To(BeTrue())
		})

		It("reports an unreachable upstream as a communication error", func() {
			url := server.URL
			server.Close()

			c := upstream.New(url, "")
			_, err := c.Chat(ctx, &llm.ChatRequest{Message: "hello"})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Error communicating with Open WebUI"))
		})

		It("aborts when the context is cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			c := upstream.New(server.URL, "")
			_, err := c.Chat(cancelled, &llm.ChatRequest{Message: "hello"})
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})

		It("rejects a nil request", func() {
			c := upstream.New(server.URL, "")
			_, err := c.Chat(ctx, nil)
			Expect(err).To(HaveOccurred())
		})
	})
})
