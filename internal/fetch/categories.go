// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

// CategoryEntry is one arXiv subject category.
type CategoryEntry struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// CategoryGroup is a named group of arXiv categories (e.g. "Physics").
type CategoryGroup struct {
	Group      string          `json:"group" yaml:"group"`
	Categories []CategoryEntry `json:"categories" yaml:"categories"`
}

// ArxivCategories returns the arXiv subject taxonomy. The list is static;
// arXiv has no discovery endpoint for it.
func ArxivCategories() []CategoryGroup {
	return arxivCategoryGroups
}

// BiorxivCategories returns the bioRxiv subject collection list.
func BiorxivCategories() []string {
	out := make([]string, len(biorxivCategories))
	copy(out, biorxivCategories)
	return out
}

// ExpandArxiv resolves a selection that may mix group names ("Computer
// Science") and category codes ("cs.AI") into a deduplicated list of
// category codes. Unknown entries are passed through as codes.
func ExpandArxiv(selection []string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(code string) {
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}

	for _, sel := range selection {
		expanded := false
		for _, group := range arxivCategoryGroups {
			if sel != group.Group {
				continue
			}
			for _, cat := range group.Categories {
				add(cat.Code)
			}
			expanded = true
			break
		}
		if !expanded {
			add(sel)
		}
	}
	return out
}

var arxivCategoryGroups = []CategoryGroup{
	{
		Group: "Physics",
		Categories: []CategoryEntry{
			{Code: "astro-ph", Name: "Astrophysics"},
			{Code: "cond-mat", Name: "Condensed Matter"},
			{Code: "gr-qc", Name: "General Relativity and Quantum Cosmology"},
			{Code: "hep-ex", Name: "High Energy Physics - Experiment"},
			{Code: "hep-lat", Name: "High Energy Physics - Lattice"},
			{Code: "hep-ph", Name: "High Energy Physics - Phenomenology"},
			{Code: "hep-th", Name: "High Energy Physics - Theory"},
			{Code: "nucl-ex", Name: "Nuclear Experiment"},
			{Code: "nucl-th", Name: "Nuclear Theory"},
			{Code: "physics", Name: "Physics (Other)"},
			{Code: "quant-ph", Name: "Quantum Physics"},
		},
	},
	{
		Group: "Mathematics",
		Categories: []CategoryEntry{
			{Code: "math.AG", Name: "Algebraic Geometry"},
			{Code: "math.AP", Name: "Analysis of PDEs"},
			{Code: "math.CA", Name: "Classical Analysis and ODEs"},
			{Code: "math.CO", Name: "Combinatorics"},
			{Code: "math.CT", Name: "Category Theory"},
			{Code: "math.CV", Name: "Complex Variables"},
			{Code: "math.DG", Name: "Differential Geometry"},
			{Code: "math.DS", Name: "Dynamical Systems"},
			{Code: "math.FA", Name: "Functional Analysis"},
			{Code: "math.GM", Name: "General Mathematics"},
			{Code: "math.GN", Name: "General Topology"},
			{Code: "math.GR", Name: "Group Theory"},
			{Code: "math.GT", Name: "Geometric Topology"},
			{Code: "math.HO", Name: "History and Overview"},
			{Code: "math.IT", Name: "Information Theory"},
			{Code: "math.KT", Name: "K-Theory and Homology"},
			{Code: "math.LO", Name: "Logic"},
			{Code: "math.MG", Name: "Metric Geometry"},
			{Code: "math.MP", Name: "Mathematical Physics"},
			{Code: "math.NA", Name: "Numerical Analysis"},
			{Code: "math.NT", Name: "Number Theory"},
			{Code: "math.OA", Name: "Operator Algebras"},
			{Code: "math.OC", Name: "Optimization and Control"},
			{Code: "math.PR", Name: "Probability"},
			{Code: "math.QA", Name: "Quantum Algebra"},
			{Code: "math.RA", Name: "Rings and Algebras"},
			{Code: "math.RT", Name: "Representation Theory"},
			{Code: "math.SG", Name: "Symplectic Geometry"},
			{Code: "math.SP", Name: "Spectral Theory"},
			{Code: "math.ST", Name: "Statistics Theory"},
		},
	},
	{
		Group: "Computer Science",
		Categories: []CategoryEntry{
			{Code: "cs.AI", Name: "Artificial Intelligence"},
			{Code: "cs.AR", Name: "Hardware Architecture"},
			{Code: "cs.CC", Name: "Computational Complexity"},
			{Code: "cs.CE", Name: "Computational Engineering, Finance, and Science"},
			{Code: "cs.CG", Name: "Computational Geometry"},
			{Code: "cs.CL", Name: "Computation and Language"},
			{Code: "cs.CR", Name: "Cryptography and Security"},
			{Code: "cs.CV", Name: "Computer Vision and Pattern Recognition"},
			{Code: "cs.CY", Name: "Computers and Society"},
			{Code: "cs.DB", Name: "Databases"},
			{Code: "cs.DC", Name: "Distributed, Parallel, and Cluster Computing"},
			{Code: "cs.DL", Name: "Digital Libraries"},
			{Code: "cs.DM", Name: "Discrete Mathematics"},
			{Code: "cs.DS", Name: "Data Structures and Algorithms"},
			{Code: "cs.ET", Name: "Emerging Technologies"},
			{Code: "cs.FL", Name: "Formal Languages and Automata Theory"},
			{Code: "cs.GA", Name: "General Algorithms"},
			{Code: "cs.GR", Name: "Graphics"},
			{Code: "cs.GT", Name: "Computer Science and Game Theory"},
			{Code: "cs.HC", Name: "Human-Computer Interaction"},
			{Code: "cs.IR", Name: "Information Retrieval"},
			{Code: "cs.IT", Name: "Information Theory"},
			{Code: "cs.LG", Name: "Machine Learning"},
			{Code: "cs.LO", Name: "Logic in Computer Science"},
			{Code: "cs.MA", Name: "Multiagent Systems"},
			{Code: "cs.MM", Name: "Multimedia"},
			{Code: "cs.MS", Name: "Mathematical Software"},
			{Code: "cs.NA", Name: "Numerical Analysis"},
			{Code: "cs.NE", Name: "Neural and Evolutionary Computing"},
			{Code: "cs.NI", Name: "Networking and Internet Architecture"},
			{Code: "cs.OS", Name: "Operating Systems"},
			{Code: "cs.PF", Name: "Performance"},
			{Code: "cs.PL", Name: "Programming Languages"},
			{Code: "cs.RO", Name: "Robotics"},
			{Code: "cs.SC", Name: "Symbolic Computation"},
			{Code: "cs.SD", Name: "Sound"},
			{Code: "cs.SE", Name: "Software Engineering"},
			{Code: "cs.SI", Name: "Social and Information Networks"},
			{Code: "cs.SY", Name: "Systems and Control"},
		},
	},
	{
		Group: "Quantitative Biology",
		Categories: []CategoryEntry{
			{Code: "q-bio.BM", Name: "Biomolecules"},
			{Code: "q-bio.CB", Name: "Cell Behavior"},
			{Code: "q-bio.GN", Name: "Genomics"},
			{Code: "q-bio.MN", Name: "Molecular Networks"},
			{Code: "q-bio.NC", Name: "Neurons and Cognition"},
			{Code: "q-bio.PE", Name: "Populations and Evolution"},
			{Code: "q-bio.QM", Name: "Quantitative Methods"},
			{Code: "q-bio.SC", Name: "Subcellular Processes"},
			{Code: "q-bio.TO", Name: "Tissues and Organs"},
		},
	},
	{
		Group: "Quantitative Finance",
		Categories: []CategoryEntry{
			{Code: "q-fin.CP", Name: "Computational Finance"},
			{Code: "q-fin.EC", Name: "Economics"},
			{Code: "q-fin.GN", Name: "General Finance"},
			{Code: "q-fin.MF", Name: "Mathematical Finance"},
			{Code: "q-fin.PM", Name: "Portfolio Management"},
			{Code: "q-fin.PR", Name: "Pricing of Securities"},
			{Code: "q-fin.RM", Name: "Risk Management"},
			{Code: "q-fin.ST", Name: "Statistical Finance"},
			{Code: "q-fin.TR", Name: "Trading and Market Microstructure"},
		},
	},
	{
		Group: "Statistics",
		Categories: []CategoryEntry{
			{Code: "stat.AP", Name: "Applications"},
			{Code: "stat.CO", Name: "Computation"},
			{Code: "stat.ML", Name: "Machine Learning"},
			{Code: "stat.ME", Name: "Methodology"},
			{Code: "stat.OT", Name: "Other Statistics"},
			{Code: "stat.TH", Name: "Theory"},
		},
	},
	{
		Group: "Electrical Engineering and Systems Science",
		Categories: []CategoryEntry{
			{Code: "eess.AS", Name: "Audio and Speech Processing"},
			{Code: "eess.IV", Name: "Image and Video Processing"},
			{Code: "eess.SP", Name: "Signal Processing"},
			{Code: "eess.SY", Name: "Systems and Control"},
		},
	},
	{
		Group: "Economics",
		Categories: []CategoryEntry{
			{Code: "econ.EM", Name: "Econometrics"},
			{Code: "econ.GN", Name: "General Economics"},
			{Code: "econ.TH", Name: "Theoretical Economics"},
		},
	},
}

var biorxivCategories = []string{
	"Animal Behavior and Cognition",
	"Biochemistry",
	"Bioengineering",
	"Bioinformatics",
	"Biophysics",
	"Cancer Biology",
	"Cell Biology",
	"Developmental Biology",
	"Ecology",
	"Evolutionary Biology",
	"Genetics",
	"Genomics",
	"Immunology",
	"Microbiology",
	"Molecular Biology",
	"Neuroscience",
	"Paleontology",
	"Pathology",
	"Pharmacology and Toxicology",
	"Physiology",
	"Plant Biology",
	"Scientific Communication and Education",
	"Synthetic Biology",
	"Systems Biology",
	"Zoology",
}
