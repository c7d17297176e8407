package llm

const stakeholderPrompt = `You are an analyst reading business communications for a project. Identify the stakeholders (people or roles) who appear in the context below.

Strict grounding rules:
- Only list people or roles explicitly present in the context. Never invent, infer, or generalize a stakeholder.
- If the context names nobody, return an empty array.

For each stakeholder, determine:
- name: the person's name or role label as it appears
- role: their function on the project, if stated
- influence: one of "High", "Medium", "Low" (omit if unclear)
- stance: one of "Supportive", "Neutral", "Skeptical", "Blocking" (omit if unclear)

Respond ONLY with a JSON array. No markdown, no explanation. Example:
[{"name":"Priya Sharma","role":"CFO","influence":"High","stance":"Skeptical"}]

Context:
%s`

const factPrompt = `You are an analyst decomposing business communications into atomic facts. Extract every independently verifiable claim from the context below.

Strict grounding rules:
- Only extract claims explicitly stated in the context. Never fabricate or embellish.
- One claim per fact. Split compound statements.

For each fact, determine:
- content: the claim as a single verifiable statement
- source: where it came from, as "channel/thread-name" or the file name
- tone: the speaker's tone (e.g. "assertive", "tentative", "frustrated")
- when: the timestamp or date attached to the claim, verbatim if present
- sourceType: "messaging" for chat or email, "file" for uploaded documents
- stakeholder: the name of the speaker making the claim, exactly as it appears (omit if unknown)

Respond ONLY with a JSON array. No markdown, no explanation. Example:
[{"content":"Budget is $15,000","source":"email/budget","tone":"assertive","when":"2024-03-02","sourceType":"messaging","stakeholder":"Priya Sharma"}]

Context:
%s`

const contradictionPrompt = `You are reviewing the fact set of a project for logical contradictions. Each fact below has an id, a source, the stakeholder who stated it, and the claim.

Look for:
- budget or figure clashes (two facts state different amounts for the same thing)
- timeline or date mismatches
- scope disagreements (one party claims something is in scope, another claims it is blocked or excluded)
- mandatory-vs-optional compliance disagreements

Report ONLY true logical contradictions. If the facts are consistent, return an empty array. Do not report stylistic differences, restatements, or facts about unrelated subjects.

Each reported contradiction must reference fact ids from the list below, and must explain the clash in plain language.

Respond ONLY with a JSON array. No markdown, no explanation. Example:
[{"factIds":["id-1","id-2"],"context":"One source states the budget is $15,000 while another states $55,000."}]

Facts:
%s`

const synthesisPrompt = `You are drafting the final requirements document for a project from its reconciled fact base. All contradictions have been resolved; the facts and decisions below are authoritative.

Project: %s
Description: %s

Active facts:
%s

Resolution decisions:
%s

Write a well-structured markdown document that synthesizes these facts into a coherent narrative: overview, stakeholders and their positions where relevant, confirmed figures and dates, scope, and open considerations. State only what the facts support.

Respond with ONLY the markdown document. No preamble.`
