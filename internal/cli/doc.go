// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the teamchat command line.
//
// Running teamchat with no subcommand opens the full-screen chat view.
// The other commands are:
//
//	teamchat chat               line-based chat with history
//	teamchat ingest <path>      print the text extracted from a document
//	teamchat personas [--write] list the team, or write it to the personas file
//	teamchat config show|get|set|path|keys
//	teamchat version
//
// Global flags --config, --model, --offline and --log-level override the
// config file. OPENAI_API_KEY is read from the environment or a .env file.
package cli
