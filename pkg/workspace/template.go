// SPDX-License-Identifier: MPL-2.0

package workspace

// Template is the starter descriptor written by "genlayout init".
const Template = `// genlayout workspace descriptor.

output_dir: "build"

generator: {
	script: "./gradlew -q generateXtextLanguage"
	inputs: ["**/*.xtext", "**/*.mwe2"]
}

projects: [
	{name: "org.example.mydsl", dir: "org.example.mydsl", role: "runtime"},
	{name: "org.example.mydsl.ide", dir: "org.example.mydsl.ide", role: "generic_ide"},
	{name: "org.example.mydsl.ui", dir: "org.example.mydsl.ui", role: "eclipse_plugin", pde: true},
	{name: "org.example.mydsl.web", dir: "org.example.mydsl.web", role: "web"},
]
`
