package examgen

// Fixed prompt templates, one per stage. Stage 1 mirrors the original BEP
// reading simulation; later stages step up passage length and question
// difficulty.

var stageTemplates = map[Stage]string{
	Stage1: stage1Template,
	Stage2: stage2Template,
	Stage3: stage3Template,
	Stage4: stage4Template,
}

const stage1Template = `
You are an expert exam writer for the University of Queensland (UQ) Bridging English Program (BEP).
Generate a JSON object containing **8 distinct reading questions** simulating "Stage 1 Reading".

### 1. Passage Guidelines (Strict):
- **Length**: 110-140 words per paragraph.
- **Style**: Academic but accessible (IELTS 6.0-6.5 level).
- **Structure**: almost all paragraphs should employ a **"Contrast" or "Misconception vs. Reality" structure**.
    - *Example structure*: "People often think X... However, recent research suggests Y..." OR "While X is popular, it has negative effects..."
    - This is crucial because the questions ask about the "Main Point" or "Writer's Purpose".
- **Topics**: Varied academic topics (Biology, Urban Planning, Psychology, Environmental Science, History of Tech). Do NOT use fictional topics.

### 2. Question Guidelines (Rotate strictly between these 3 types):
Type A: **"What point is the writer making in the reading passage?"**
- Correct answer: Summarizes the *argument* (usually found after the "However").
- Distractors: True details mentioned in the text but NOT the main point.

Type B: **"What is the writer doing in this passage?"**
- Options MUST start with -ing verbs (e.g., "Correcting a misunderstanding...", "Outlining a process...", "Doubting a theory...", "Introducing a new concept...").

Type C: **"What would make a good heading for this paragraph?"**
- Options: Short, punchy titles or questions (e.g., "Why do birds sing?", "A new approach to waste").

### 3. Output Format:
Return ONLY valid JSON.
{
  "exam_set": [
    {
      "passage": "Text...",
      "question": "One of the questions types above...",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct": 0
    },
    ... (repeat 8 times total)
  ]
}
`

const stage2Template = `
You are an expert exam writer for the University of Queensland (UQ) Bridging English Program (BEP).
Generate a JSON object containing **8 distinct reading questions** simulating "Stage 2 Reading".

### 1. Passage Guidelines (Strict):
- **Length**: 140-170 words per paragraph.
- **Style**: Academic (IELTS 6.5 level), denser noun phrases than Stage 1.
- **Structure**: each paragraph develops one claim supported by evidence, with at least one piece of vocabulary whose meaning must be inferred from context.
- **Topics**: Varied academic topics (Economics, Public Health, Linguistics, Marine Science, Architecture). Do NOT use fictional topics.

### 2. Question Guidelines (Rotate strictly between these 3 types):
Type A: **"The word '...' in the passage is closest in meaning to..."**
- Target a mid-frequency academic word; distractors are plausible senses that do not fit the context.

Type B: **"According to the passage, which of the following is true?"**
- Correct answer paraphrases a stated detail; distractors contradict or exaggerate the text.

Type C: **"What can be inferred from the passage?"**
- Correct answer follows logically but is not stated verbatim.

### 3. Output Format:
Return ONLY valid JSON.
{
  "exam_set": [
    {
      "passage": "Text...",
      "question": "One of the questions types above...",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct": 0
    },
    ... (repeat 8 times total)
  ]
}
`

const stage3Template = `
You are an expert exam writer for the University of Queensland (UQ) Bridging English Program (BEP).
Generate a JSON object containing **8 distinct reading questions** simulating "Stage 3 Reading".

### 1. Passage Guidelines (Strict):
- **Length**: 170-200 words per paragraph.
- **Style**: Formal academic prose (IELTS 7.0 level) with hedging and cited findings ("A 2019 study found...").
- **Structure**: paragraphs present a position and at least one counter-argument or limitation.
- **Topics**: Varied academic topics (Climate Policy, Neuroscience, Education Research, Materials Science, Media Studies). Do NOT use fictional topics.

### 2. Question Guidelines (Rotate strictly between these 3 types):
Type A: **"Which sentence best summarises the paragraph?"**
- Options are full sentences; distractors cover only part of the argument.

Type B: **"The writer mentions '...' in order to..."**
- Tests rhetorical purpose (to concede, to illustrate, to qualify a claim).

Type C: **"Which of the following does the writer imply about ...?"**
- Correct answer requires combining two statements from the passage.

### 3. Output Format:
Return ONLY valid JSON.
{
  "exam_set": [
    {
      "passage": "Text...",
      "question": "One of the questions types above...",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct": 0
    },
    ... (repeat 8 times total)
  ]
}
`

const stage4Template = `
You are an expert exam writer for the University of Queensland (UQ) Bridging English Program (BEP).
Generate a JSON object containing **8 distinct reading questions** simulating "Stage 4 Reading".

### 1. Passage Guidelines (Strict):
- **Length**: 200-240 words per paragraph.
- **Style**: Dense academic register (IELTS 7.0-7.5 level) approaching authentic journal abstracts and textbook prose.
- **Structure**: multi-claim paragraphs where the writer's stance must be distinguished from the views being reported.
- **Topics**: Varied academic topics (Epistemology of Science, Macroeconomics, Genetics, Urban Sociology, Computational Linguistics). Do NOT use fictional topics.

### 2. Question Guidelines (Rotate strictly between these 3 types):
Type A: **"Which statement best reflects the writer's own view?"**
- Distractors attribute reported views to the writer.

Type B: **"What is the relationship between the first and second half of the paragraph?"**
- Options name rhetorical relations (claim and concession, problem and response, cause and effect, general and exception).

Type C: **"Which conclusion is best supported by the passage as a whole?"**
- Correct answer stays within the scope of the evidence; distractors overgeneralise.

### 3. Output Format:
Return ONLY valid JSON.
{
  "exam_set": [
    {
      "passage": "Text...",
      "question": "One of the questions types above...",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct": 0
    },
    ... (repeat 8 times total)
  ]
}
`
