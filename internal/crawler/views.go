package crawler

// viewDescriptors are the query permutations walked for every source. The
// listing surface returns different item subsets depending on sort, filter,
// and view parameters, so coverage requires trying all of them.
var viewDescriptors = []string{
	"", // default view
	"?tab=all",
	"?tab=public",
	"?appid=0",
	"?p=1&sort=newestfirst",
	"?p=1&sort=oldestfirst",
	"?p=1&sort=mostrecent",
	"?p=1&view=grid",
	"?p=1&view=list",
	"?p=1&appid=0&sort=newestfirst",
	"?p=1&appid=0&sort=oldestfirst",
	"?p=1&browsefilter=myfiles",
}

// accessDeniedMarkers identify private, missing, or empty profiles. Any of
// these in the profile body short-circuits the source to an empty result.
var accessDeniedMarkers = []string{
	"The specified profile is private",
	"This profile is private",
	"The specified profile could not be found",
	"This user has not yet set up their Steam Community profile",
	"profile is set to private",
	"No screenshots",
}
