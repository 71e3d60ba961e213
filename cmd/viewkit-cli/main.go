package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"gopkg.in/yaml.v3"

	"github.com/Kendogar/viewkit/pkg/render"
	"github.com/Kendogar/viewkit/pkg/render/gotpl"
	"github.com/Kendogar/viewkit/pkg/render/pongo"
)

func main() {
	dir := flag.String("dir", "templates", "template root directory")
	ext := flag.String("ext", "", "template extension override")
	engineName := flag.String("engine", "pongo", "template engine (pongo|gotpl)")
	templateName := flag.String("template", "", "template name to render")
	modelPath := flag.String("model", "", "model file, JSON or YAML")
	output := flag.String("output", "", "output file (stdout if empty)")
	interactive := flag.Bool("interactive", false, "pick the template from a list")
	flag.Parse()

	ctx := context.Background()

	engine, err := buildEngine(*engineName, *dir, *ext)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	registry := render.NewRegistry()
	registry.MustRegister(engine)

	engine, err = registry.Get(*engineName)
	if err != nil {
		log.Fatalf("Failed to select engine: %v", err)
	}

	name := *templateName
	if *interactive {
		name, err = pickTemplate(engine)
		if err != nil {
			log.Fatalf("Failed to pick template: %v", err)
		}
	}
	if name == "" {
		log.Fatalf("Missing -template (or use -interactive)")
	}

	model, err := loadModel(*modelPath)
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}

	svc, err := render.New(render.WithEngine(engine))
	if err != nil {
		log.Fatalf("Failed to build render service: %v", err)
	}

	rendered, err := svc.RenderToString(ctx, name, model)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(rendered), 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Rendered output written to %s\n", *output)
	} else {
		fmt.Println(rendered)
	}
}

func buildEngine(name, dir, ext string) (render.Engine, error) {
	switch name {
	case "pongo":
		opts := []pongo.Option{pongo.WithBaseDir(dir)}
		if ext != "" {
			opts = append(opts, pongo.WithExtension(ext))
		}
		return pongo.New(opts...)
	case "gotpl":
		suffix := strings.TrimSpace(ext)
		if suffix == "" {
			suffix = ".tmpl.html"
		}
		if !strings.HasPrefix(suffix, ".") {
			suffix = "." + suffix
		}
		return gotpl.New(
			gotpl.WithGlob(filepath.Join(dir, "*"+suffix)),
			gotpl.WithExtension(suffix),
		)
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}

func pickTemplate(engine render.Engine) (string, error) {
	names := engine.Templates()
	if len(names) == 0 {
		return "", errors.New("no templates found")
	}

	var choice string
	prompt := &survey.Select{
		Message: "Template to render:",
		Options: names,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}
	return choice, nil
}

func loadModel(path string) (any, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	model := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &model); err != nil {
			return nil, fmt.Errorf("parse yaml model: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &model); err != nil {
			return nil, fmt.Errorf("parse json model: %w", err)
		}
	}
	return model, nil
}
