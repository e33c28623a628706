package services_test

import (
	"context"
	"testing"

	"github.com/developia-II/tree-rater-backend/internal/services"
	"github.com/sashabaranov/go-openai"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildCritiqueRequest(t *testing.T) {
	Convey("Given an image URL", t, func() {
		req := services.BuildCritiqueRequest("gpt-4o-mini", "https://cdn.example.com/tree.jpg")

		Convey("The request carries the fixed prompt and sampling settings", func() {
			So(req.Model, ShouldEqual, "gpt-4o-mini")
			So(req.MaxTokens, ShouldEqual, 1000)
			So(req.Temperature, ShouldAlmostEqual, 0.7, 1e-6)
			So(req.Messages, ShouldHaveLength, 2)

			sys := req.Messages[0]
			So(sys.Role, ShouldEqual, openai.ChatMessageRoleSystem)
			So(sys.Content, ShouldStartWith, "You are a professional Christmas tree critic.")
			So(sys.Content, ShouldEndWith, services.RatingTemplate)

			user := req.Messages[1]
			So(user.Role, ShouldEqual, openai.ChatMessageRoleUser)
			So(user.MultiContent, ShouldHaveLength, 2)
			So(user.MultiContent[0].Text, ShouldEqual, services.UserPrompt)
			So(user.MultiContent[1].ImageURL.URL, ShouldEqual, "https://cdn.example.com/tree.jpg")
			So(user.MultiContent[1].ImageURL.Detail, ShouldEqual, openai.ImageURLDetailLow)
		})
	})
}

func TestNewCritics(t *testing.T) {
	Convey("Engines refuse to start without credentials", t, func() {
		_, err := services.NewOpenAICritic(" ", "", "")
		So(err, ShouldNotBeNil)
		_, err = services.NewGeminiCritic(context.Background(), "", "")
		So(err, ShouldNotBeNil)
	})

	Convey("Engines report their names", t, func() {
		o, err := services.NewOpenAICritic("sk-test", "", "")
		So(err, ShouldBeNil)
		So(o.Name(), ShouldEqual, "openai")
		g, err := services.NewGeminiCritic(context.Background(), "g-key", "")
		So(err, ShouldBeNil)
		So(g.Name(), ShouldEqual, "gemini")
		So(g.Model(), ShouldEqual, "gemini-1.5-flash")
		So(g.Close(), ShouldBeNil)
	})
}
