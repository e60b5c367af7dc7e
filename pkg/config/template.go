package config

// Template is the commented configuration file written by `mdstream init`.
// Every setting is shown with its default value.
const Template = `# mdstream configuration
# See: https://github.com/yaklabco/mdstream

# Markdown flavor: commonmark or gfm
flavor: gfm

# Incremental reparsing of the document tail.
incremental:
  enabled: true
  # Trailing top-level blocks always reparsed.
  base_window: 3
  # Used when a list, quote, code block or table is among the last blocks.
  complex_window: 5
  # Used while the text ends inside an open fence, list, quote or table.
  open_construct_window: 8
  # Bytes of trailing text inspected for open constructs.
  suffix_scan_bytes: 2048

# Append plain words to the last paragraph without parsing.
fast_path:
  enabled: true

# Code block tokenization.
highlight:
  cache_size: 256
  detect_language: true

# Largest streamed document in bytes (0 = unlimited).
# max_bytes: 0

# Log level: debug, info, warn, or error
log_level: info
`
