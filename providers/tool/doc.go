// Package tool provides the foundational types for defining and executing
// tools that a language model can invoke during a conversation.
//
// A tool wraps a typed Go function together with its name, description, and
// auto-derived JSON schemas, making it ready for registration with any
// provider that implements the [ai.Provider] interface. The main entry point
// for creating tools is [New]; [WithDescription] attaches the description the
// model uses to pick a tool.
//
// The [Catalog] type offers a thread-safe registry for managing collections
// of tools; use [NewCatalog] or [NewCatalogWithTools] to create one.
package tool
