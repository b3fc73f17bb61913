package extract

import (
	"context"
	"path/filepath"
	"strings"
)

// Source 提取源码文件的模块级文档注释。
type Source struct{}

func (Source) Name() string { return "source" }

func (Source) Extract(ctx context.Context, path string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if docParsers[ext] == nil {
		return "", false, nil
	}
	content, err := readText(path)
	if err != nil {
		return "", false, err
	}
	s, ok := Docstring(content, ext)
	return s, ok, nil
}

var docParsers = map[string]func([]string) string{
	"py":   pythonDoc,
	"js":   jsDoc,
	"ts":   jsDoc,
	"rs":   rustDoc,
	"java": javaDoc,
	"c":    doxygenDoc,
	"h":    doxygenDoc,
	"cpp":  doxygenDoc,
	"cc":   doxygenDoc,
	"cxx":  doxygenDoc,
	"hpp":  doxygenDoc,
	"hxx":  doxygenDoc,
	"go":   goDoc,
}

// Docstring 按扩展名（小写、不含点）选择解析器，并截到第一句或 100 字符。
func Docstring(content, ext string) (string, bool) {
	parse := docParsers[ext]
	if parse == nil {
		return "", false
	}
	doc := parse(lines(content, 100))
	if doc == "" {
		return "", false
	}
	doc = firstSentence(doc)
	return doc, doc != ""
}

func firstSentence(s string) string {
	s = CleanText(s)
	if i := strings.Index(s, ". "); i >= 0 && runeLen(s[:i]) < 100 {
		return s[:i]
	}
	if runeLen(s) > 100 {
		cut := string([]rune(s)[:100])
		if i := strings.LastIndex(cut, " "); i > 0 {
			return cut[:i]
		}
		return cut
	}
	return s
}

func pythonDoc(ls []string) string {
	var (
		in    bool
		delim string
		out   []string
	)
	for _, line := range ls {
		t := strings.TrimSpace(line)
		if !in {
			if t == "" || strings.HasPrefix(t, "#") {
				continue
			}
			switch {
			case strings.HasPrefix(t, `"""`):
				delim = `"""`
			case strings.HasPrefix(t, "'''"):
				delim = "'''"
			default:
				// 第一条语句不是 docstring。
				return ""
			}
			in = true
			body := strings.TrimPrefix(t, delim)
			if end := strings.Index(body, delim); end >= 0 {
				return strings.TrimSpace(body[:end])
			}
			if body = strings.TrimSpace(body); body != "" {
				out = append(out, body)
			}
			continue
		}
		if end := strings.Index(t, delim); end >= 0 {
			if c := strings.TrimSpace(t[:end]); c != "" {
				out = append(out, c)
			}
			break
		}
		if t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, " ")
}

// blockComment 返回第一个 /** ... */（或 /*! ... */）注释块的内容行。
func blockComment(ls []string, openers ...string) []string {
	var (
		in  bool
		out []string
	)
	for _, line := range ls {
		t := strings.TrimSpace(line)
		if !in {
			for _, o := range openers {
				if strings.HasPrefix(t, o) {
					in = true
					t = strings.TrimSpace(strings.TrimPrefix(t, o))
					break
				}
			}
			if !in {
				continue
			}
		}
		end := strings.HasSuffix(t, "*/")
		t = strings.TrimSpace(strings.TrimSuffix(t, "*/"))
		t = strings.TrimSpace(strings.TrimLeft(t, "*"))
		if t != "" {
			out = append(out, t)
		}
		if end {
			break
		}
	}
	return out
}

func jsDoc(ls []string) string {
	block := blockComment(ls, "/**")
	for _, l := range block {
		for _, tag := range []string{"@file ", "@fileoverview ", "@module "} {
			if v, ok := strings.CutPrefix(l, tag); ok {
				return v
			}
		}
	}
	if len(block) > 0 && !strings.HasPrefix(block[0], "@") {
		return block[0]
	}
	return ""
}

func rustDoc(ls []string) string {
	var out []string
	for _, line := range ls {
		t := strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(t, "//!"); ok {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
			continue
		}
		if len(out) > 0 {
			break
		}
	}
	return strings.Join(out, " ")
}

func javaDoc(ls []string) string {
	var out []string
	for _, l := range blockComment(ls, "/**") {
		if !strings.HasPrefix(l, "@") {
			out = append(out, l)
		}
	}
	return strings.Join(out, " ")
}

func doxygenDoc(ls []string) string {
	var out []string
	for _, l := range blockComment(ls, "/**", "/*!") {
		if !strings.HasPrefix(l, "@") && !strings.HasPrefix(l, `\`) {
			out = append(out, l)
		}
	}
	if len(out) > 0 {
		return strings.Join(out, " ")
	}
	for _, line := range ls {
		t := strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(t, "///"); ok {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
			continue
		}
		if len(out) > 0 {
			break
		}
	}
	return strings.Join(out, " ")
}

// goDoc 取 package 子句之前紧邻的 // 注释，去掉 "Package x " 前缀。
func goDoc(ls []string) string {
	var block []string
	for _, line := range ls {
		t := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(t, "//go:build"), strings.HasPrefix(t, "// +build"):
			block = nil
		case strings.HasPrefix(t, "//"):
			block = append(block, strings.TrimSpace(strings.TrimPrefix(t, "//")))
		case strings.HasPrefix(t, "package "):
			doc := strings.Join(block, " ")
			name := strings.TrimSpace(strings.TrimPrefix(t, "package "))
			if rest, ok := strings.CutPrefix(doc, "Package "+name+" "); ok {
				doc = rest
			}
			return doc
		case t == "":
			block = nil
		default:
			return ""
		}
	}
	return ""
}
