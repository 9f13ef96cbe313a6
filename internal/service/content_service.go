package service

import (
	"bytes"
	"context"
	"strings"

	"github.com/haierkeys/link-editor-service/internal/domain"
	"github.com/haierkeys/link-editor-service/internal/dto"
	"github.com/haierkeys/link-editor-service/internal/metrics"
	"github.com/haierkeys/link-editor-service/pkg/code"
	"github.com/haierkeys/link-editor-service/pkg/i18n"
	"github.com/haierkeys/link-editor-service/pkg/logger"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxLinks    = 500
	defaultConcurrency = 8
)

// ContentService 富文本内容链接扫描服务接口
type ContentService interface {
	// Links finds every link in markdown content and classifies it with the link types
	Links(ctx context.Context, t i18n.Func, params *dto.ContentLinksRequest) (*dto.ContentLinksDTO, error)
}

type contentService struct {
	types       linkTypes
	markdown    goldmark.Markdown
	maxLinks    int
	concurrency int
	logger      *zap.Logger
}

// NewContentService 创建内容链接扫描服务
func NewContentService(registry *domain.Registry, cfg *ServiceConfig, log *zap.Logger) ContentService {
	if log == nil {
		log = zap.NewNop()
	}
	maxLinks := cfg.Content.MaxLinks
	if maxLinks <= 0 {
		maxLinks = defaultMaxLinks
	}
	concurrency := cfg.Content.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &contentService{
		types:       linkTypes{registry: registry, settings: cfg.LinkTypes},
		markdown:    goldmark.New(goldmark.WithExtensions(extension.Linkify)),
		maxLinks:    maxLinks,
		concurrency: concurrency,
		logger:      log,
	}
}

func (s *contentService) Links(ctx context.Context, t i18n.Func, params *dto.ContentLinksRequest) (*dto.ContentLinksDTO, error) {
	src := []byte(params.Content)
	doc := s.markdown.Parser().Parse(text.NewReader(src))

	links, err := s.collect(doc, src)
	if err != nil {
		return nil, code.ErrorContentParseFailed.WithDetails(err.Error())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, link := range links {
		link := link
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.classify(t, link)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &dto.ContentLinksDTO{Links: links}
	for _, link := range links {
		if link.LinkTypeID != "" && link.Error == "" {
			res.Supported++
			metrics.ContentLinks.WithLabelValues(link.LinkTypeID).Inc()
		} else {
			res.Unsupported++
			metrics.ContentLinks.WithLabelValues("").Inc()
		}
	}
	s.logger.Debug("content scanned",
		zap.Int(logger.FieldCount, len(links)),
		zap.Int("supported", res.Supported))
	return res, nil
}

// collect walks the document in source order and stops at maxLinks
func (s *contentService) collect(doc ast.Node, src []byte) ([]*dto.ContentLinkDTO, error) {
	var links []*dto.ContentLinkDTO
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if len(links) >= s.maxLinks {
			return ast.WalkStop, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			links = append(links, &dto.ContentLinkDTO{
				Href:  string(node.Destination),
				Title: string(node.Title),
				Text:  inlineText(node, src),
			})
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			href := string(node.URL(src))
			if node.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(href, "mailto:") {
				href = "mailto:" + href
			}
			links = append(links, &dto.ContentLinkDTO{
				Href: href,
				Text: string(node.Label(src)),
				Auto: true,
			})
		}
		return ast.WalkContinue, nil
	})
	return links, err
}

func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			buf.Write(v.Segment.Value(src))
			if v.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// classify resolves one link with the first suitable link type; link is owned by the caller's goroutine
func (s *contentService) classify(t i18n.Func, link *dto.ContentLinkDTO) {
	lt, model, err := s.types.resolve("", domain.Link{Href: link.Href})
	if lt != nil {
		link.LinkTypeID = lt.ID()
	}
	if err != nil {
		link.Error = errorMessage(err)
		return
	}
	link.Model = model
	if preview, err := lt.Preview(model, t); err == nil {
		link.Preview = &dto.PreviewDTO{Icon: preview.Icon, Title: preview.Title}
	}
}

// errorMessage prefers the detail carried by a code, which holds the link type's own message
func errorMessage(err error) string {
	var c *code.Code
	if errors.As(err, &c) && len(c.Details()) > 0 {
		return c.Details()[0]
	}
	return err.Error()
}
