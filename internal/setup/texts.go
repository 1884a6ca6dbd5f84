package setup

const rule = "--------------------------------------"

// Banner opens an interactive run.
var Banner = []string{
	rule,
	"Welcome to NanoShaper Setup",
	rule,
	"This script will setup NanoShaper executable/lib/python module for Linux/Mac.",
	"For Windows pre-compiled binaries are available.",
	"At the end you can check the build results in make_ns.txt.",
	"",
	"If you additionally have root privileges this script can install for you also the missing packages",
	"and if NanoShaper is compiled as a library/python module this will be installed. ",
	"To get the full automation of the installation process please get root privileges.",
	"",
	"wget/curl are needed in Linux/Mac respectively",
	"together with a working Internet connection if packages are installed.",
	rule,
	"",
}

const (
	PrivilegeQuestion = "Do you have root privileges? [y/n] "
	VariantQuestion   = "Do you want to compile as a DelPhi-Module, as Stand-Alone or as Python module? [lib/exe/py] "
	PauseMessage      = "Press any key to continue..."
	UnknownVariant    = "Option not recognised, assuming stand-alone executable"
)

// NotElevatedNotice lists what cannot be done without privileges.
var NotElevatedNotice = []string{
	"",
	"Without root priviliges you cannot install packets and the compiled libraries",
	"The needed packets are: boost, gmp, mpfr and cmake.",
	"",
}

// WindowsInstructions replaces the automated build on Windows.
var WindowsInstructions = []string{
	"",
	"-----------------------------------------",
	`Windows binaries are availale on \bin`,
	"To compile on Windows please follow user guide instructions; these are summarized here",
	"1) Download and compile boost libraries. Set BOOST_DIR to your boost root",
	"2) Download CGAL. Patch the two include files in CGALPatch dir. Compile CGAL. Set CGAL_DIR to your CGAL root ",
	"3) Cmake of NanoShaper",
	"4) Open Visual Studio project and compile",
	"-----------------------------------------",
}
