package help

const ColdstartYAML = `# tutodiy Quick Start

backends:
  image: "One illustration per step from the OpenAI image API (default)"
  scrape: "A passage from a how-to site matching the step keywords"
  text: "A short explanation of the step from the assistant"
  none: "No external calls, every step shows a placeholder"

modes:
  concurrent: "All steps at once, results joined in step order (default)"
  sequential: "One step at a time with --delay between calls, for rate limits"

commands:
  serve: |
    OPENAI_API_KEY=sk-... ANTHROPIC_API_KEY=sk-ant-... tutodiy serve
    # http://localhost:3000

  serve_throttled: |
    tutodiy serve --mode sequential --delay 2s

  serve_scrape: |
    tutodiy serve --backend scrape --log-format text

  try_one_tutorial: |
    tutodiy enrich 1 --backend none

  ask: |
    tutodiy ask "Quel fil utiliser pour un électroaimant ?"

  catalog: |
    tutodiy catalog list
    tutodiy catalog show 1 --keywords 5
    tutodiy catalog export > tutorials.yaml
    tutodiy catalog import --db tutorials.db tutorials.yaml
    tutodiy serve --catalog tutorials.db

environment:
  PORT: "Listening port (default 3000)"
  OPENAI_API_KEY: "Image backend and the openai ask provider"
  ANTHROPIC_API_KEY: "Default ask provider"
  note: "A .env file in the working directory is loaded first"

config_file: |
  # tutodiy serve --config tutodiy.yaml
  catalog:
    path: tutorials.yaml
  enrich:
    backend: image
    mode: sequential
    delay: 2s
    attempts: 2
    step_timeout: 45s
  scrape:
    search_url: "https://fr.wikihow.com/wikiHowTo?search=%s"
    language: fr
    max_chars: 600
  ask:
    provider: anthropic
    max_tokens: 150

http:
  "GET /": "Tutorial index"
  "GET /tutorial/{id}": "Tutorial with one artifact per step, 404 for unknown ids"
  "POST /ask": '{"question": "..."} -> {"answer": "..."}, always 200'
  "GET /healthz": "Liveness"
  "GET /metrics": "Prometheus metrics"

failure_behavior:
  - "A failed step shows a placeholder, other steps are unaffected"
  - "Missing or rejected credentials give placeholders on every step, never an error page"
  - "Blank questions get a guidance message, assistant errors a fallback message"
  - "Unknown tutorial ids return 404 without calling any backend"
`
