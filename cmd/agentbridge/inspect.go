// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/wtfsayo/agentbridge/pkg/plugin"
)

type inspectResult struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Shape       string   `json:"shape"`
	Description string   `json:"description,omitempty"`
	Actions     []string `json:"actions,omitempty"`
	Providers   []string `json:"providers,omitempty"`
	Evaluators  []string `json:"evaluators,omitempty"`
	Services    []string `json:"services,omitempty"`
}

func runInspect(global globalFlags, args []string) {
	if len(args) != 1 {
		fatal(fmt.Errorf("usage: agentbridge inspect <manifest.yaml>"))
	}
	manifest, err := plugin.LoadManifest(args[0])
	if err != nil {
		fatal(err)
	}

	result := inspectResult{
		Name:        manifest.Name,
		Version:     manifest.Version,
		Shape:       string(manifest.DetectShape()),
		Description: manifest.Description,
		Actions:     manifest.Actions,
		Providers:   manifest.Providers,
		Evaluators:  manifest.Evaluators,
	}
	for _, svc := range manifest.Services {
		result.Services = append(result.Services, svc.Type)
	}

	if global.JSON {
		printJSON(result)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "name\t%s\n", result.Name)
	fmt.Fprintf(w, "version\t%s\n", result.Version)
	fmt.Fprintf(w, "shape\t%s\n", result.Shape)
	if result.Description != "" {
		fmt.Fprintf(w, "description\t%s\n", result.Description)
	}
	for _, name := range result.Actions {
		fmt.Fprintf(w, "action\t%s\n", name)
	}
	for _, name := range result.Providers {
		fmt.Fprintf(w, "provider\t%s\n", name)
	}
	for _, name := range result.Evaluators {
		fmt.Fprintf(w, "evaluator\t%s\n", name)
	}
	for _, name := range result.Services {
		fmt.Fprintf(w, "service\t%s\n", name)
	}
	w.Flush()
}
