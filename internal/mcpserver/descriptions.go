package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeAnalyzeSource() string {
	return `Runs the six heuristic passes (bugs, complexity, security, coverage, performance, smells) over Python, Java, TypeScript or JavaScript source.

USE WHEN:
- Reviewing a single file pasted into the conversation
- Triaging a directory for the riskiest files before a review
- Estimating how much testing a file needs

INTERPRETING RESULTS:
- Every category score is 0-100, higher is better
- Bug and smell scores below 70 deserve attention; below 50 is poor
- Security risk_level High or Critical means at least one injection or credential finding
- estimated_coverage is a prediction from tests_generated and testability, not a measurement
- Java interfaces are reported with is_interface=true and fixed scores; analyze the implementation instead
- Unsupported languages come back with supported=false and neutral scores

METRICS RETURNED:
- Per file: bug_analysis, test_complexity, security_analysis, coverage_prediction, performance_analysis and code_smells
- Each finding: type, line, severity, code excerpt and a suggested fix
- Batches: per-file analyses plus a summary with mean scores and critical/high counts`
}

func describeGenerateTests() string {
	return `Generates a test skeleton for Python (pytest), Java (JUnit 5 + Mockito), TypeScript (Jest with Angular TestBed) or JavaScript (Jest with global mocks). Nothing is written to disk.

USE WHEN:
- Bootstrapping tests for untested code
- Getting the mock setup for a class with many collaborators
- Producing a starting point to refine by hand

INTERPRETING RESULTS:
- Drafts are heuristic; they carry framework markers but are not guaranteed to compile or pass
- origin=template came from the built-in strategies, origin=model from the configured external model
- origin=interface means a Java interface was given and the draft only explains why no tests exist
- syntax.valid=false lists parse error positions in the draft

METRICS RETURNED:
- file, test_file (conventional name), framework, origin, test_count, content
- warnings for interfaces and unsupported languages`
}

func describeCountTests() string {
	return `Counts test cases in test source using framework markers: it(' and it(" for JavaScript and TypeScript, @Test and def test_ for Python and Java.

USE WHEN:
- Feeding an existing test count into analyze_source as tests_generated
- Checking how many cases a generated or hand-written test file holds

INTERPRETING RESULTS:
- Counts are textual; commented-out tests are counted too

METRICS RETURNED:
- tests: number of markers found
- language: the language the markers were chosen for`
}
